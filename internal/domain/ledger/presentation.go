package ledger

// MovementLabel is the wording shown to users for a debt's direction
type MovementLabel string

const (
	LabelOwedToUs MovementLabel = "OWED_TO_US"
	LabelWeOwe    MovementLabel = "WE_OWE"
)

// PresentMovement returns the label shown for a debt row.
//
// Driver and customer rows read literally: DEBTOR is money owed to us.
// Branch rows are listed under the counterpart's name, so the label is taken
// from the counterpart's point of view and reads inverted: DEBTOR shows as
// "creditor (owed to us)" and CREDITOR as "debtor (we owe)".
// Nothing in settlement or cash math may call this.
func PresentMovement(d *Debt) (MovementLabel, string) {
	if d.DebtorType == DebtorTypeBranch {
		if d.MovementType == MovementDebtor {
			return LabelOwedToUs, "Creditor (owed to us)"
		}
		return LabelWeOwe, "Debtor (we owe)"
	}
	if d.MovementType == MovementDebtor {
		return LabelOwedToUs, "Debtor (owes us)"
	}
	return LabelWeOwe, "Creditor (we owe)"
}
