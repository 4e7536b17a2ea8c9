package workflow

// stageActors is the role-to-stage authorization table for approval actions.
// Stages missing from the table have no authorized actors: approving or
// rejecting a request that is in Draft, a terminal stage, or procurement
// execution is always unauthorized.
var stageActors = map[Stage][]Role{
	StagePendingAreaLead:  {RoleAreaLead, RoleExecutive, RoleAdmin},
	StagePendingExecutive: {RoleExecutive, RoleAdmin},
	StagePendingTreasury:  {RoleTreasury, RoleAdmin},
}

// stageOrdinals maps each pending stage to the ledger ordinal recorded when a
// decision is taken there. Submission is ordinal 0.
var stageOrdinals = map[Stage]int{
	StagePendingAreaLead:  1,
	StagePendingExecutive: 2,
	StagePendingTreasury:  3,
}

// OrdinalSubmit is the ledger ordinal of the submission event.
const OrdinalSubmit = 0

// CanAct reports whether role is authorized to take an approval decision on a
// request sitting at current.
func CanAct(role Role, current Stage) bool {
	for _, allowed := range stageActors[current] {
		if allowed == role {
			return true
		}
	}
	return false
}

// AuthorizedRoles returns the roles permitted to act at stage, in table
// order. Empty for stages with no authorized actors.
func AuthorizedRoles(stage Stage) []Role {
	return append([]Role(nil), stageActors[stage]...)
}

// ActionableStages returns the pending stages at which role may act, in
// workflow order. Used to scope pending-request listings per role.
func ActionableStages(role Role) []Stage {
	stages := make([]Stage, 0, len(stageOrdinals))
	for _, s := range []Stage{StagePendingAreaLead, StagePendingExecutive, StagePendingTreasury} {
		if CanAct(role, s) {
			stages = append(stages, s)
		}
	}
	return stages
}

// StageOrdinal returns the ledger ordinal for a pending stage. ok is false
// for any stage outside the pending set; callers must refuse to record an
// event rather than invent an ordinal.
func StageOrdinal(s Stage) (ordinal int, ok bool) {
	ordinal, ok = stageOrdinals[s]
	return ordinal, ok
}
