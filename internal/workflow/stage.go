package workflow

// Stage represents the workflow position of a purchase request.
type Stage string

const (
	StageDraft            Stage = "DRAFT"
	StagePendingAreaLead  Stage = "PENDING_AREA_LEAD"
	StagePendingExecutive Stage = "PENDING_EXECUTIVE"
	StagePendingTreasury  Stage = "PENDING_TREASURY"
	StageApproved         Stage = "APPROVED"
	StageRejected         Stage = "REJECTED"
	StageVoided           Stage = "VOIDED"
	StageInProgress       Stage = "IN_PROGRESS"
	StageCompleted        Stage = "COMPLETED"
)

var validStages = map[Stage]bool{
	StageDraft:            true,
	StagePendingAreaLead:  true,
	StagePendingExecutive: true,
	StagePendingTreasury:  true,
	StageApproved:         true,
	StageRejected:         true,
	StageVoided:           true,
	StageInProgress:       true,
	StageCompleted:        true,
}

// pendingStages are the stages at which an approval action may be taken.
var pendingStages = map[Stage]bool{
	StagePendingAreaLead:  true,
	StagePendingExecutive: true,
	StagePendingTreasury:  true,
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if the stage is one of the known workflow stages.
func (s Stage) IsValid() bool {
	return validStages[s]
}

// IsPending returns true if the stage is awaiting an approval decision.
func (s Stage) IsPending() bool {
	return pendingStages[s]
}

// IsTerminal returns true if the approval protocol defines no further
// transition out of the stage. Approved hands the request off to procurement
// execution (InProgress, Completed), which this engine records but never
// produces itself.
func (s Stage) IsTerminal() bool {
	return s.IsValid() && s != StageDraft && !pendingStages[s]
}
