package enum

// MovementType classifies a stock ledger entry
type MovementType string

const (
	MovementSale          MovementType = "sale"
	MovementCompensation  MovementType = "compensation"
	MovementRestock       MovementType = "restock"
	MovementCancelRestock MovementType = "cancel_restock"
	MovementAdjustment    MovementType = "adjustment"
	MovementImport        MovementType = "import"
)
