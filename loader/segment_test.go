package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lease = `RESIDENTIAL LEASE AGREEMENT
1. Parties. This lease is made between
   the Landlord and the Tenant.
2.  Rent. Rent of $1,200 is due on the
1st day of each month.

 3. Deposit.   A security deposit of $1,200
	is held by the Landlord.`

func TestSegmentClauses(t *testing.T) {
	clauses := SegmentClauses(lease)

	require.Len(t, clauses, 4)
	assert.Equal(t, "RESIDENTIAL LEASE AGREEMENT", clauses[0])
	assert.Equal(t, "Parties. This lease is made between the Landlord and the Tenant.", clauses[1])
	assert.Equal(t, "Rent. Rent of $1,200 is due on the 1st day of each month.", clauses[2])
	assert.Equal(t, "Deposit. A security deposit of $1,200 is held by the Landlord.", clauses[3])
}

func TestSegmentClausesNoMarkers(t *testing.T) {
	clauses := SegmentClauses("  no markers\n\there  ")
	assert.Equal(t, []string{"no markers here"}, clauses)
}

func TestSegmentClausesBlank(t *testing.T) {
	assert.Empty(t, SegmentClauses(""))
	assert.Empty(t, SegmentClauses(" \n\t "))
}

func TestSegmentClausesDropsEmptyFragments(t *testing.T) {
	clauses := SegmentClauses("\n1. Only this one.\n2.   ")
	assert.Equal(t, []string{"Only this one."}, clauses)
}

func TestSegmentClausesSplitsOnLineLeadingNumbers(t *testing.T) {
	// "Section\n2. " looks like a clause marker and is split on.
	clauses := SegmentClauses("\n1. See Section\n2. for details.")
	assert.Equal(t, []string{"See Section", "for details."}, clauses)
}

func TestSegmentClausesKeepsNonWhitespace(t *testing.T) {
	clauses := SegmentClauses(lease)

	strip := func(s string) string { return strings.Join(strings.Fields(s), "") }
	joined := strip(strings.Join(clauses, ""))
	original := strip(clauseMarker.ReplaceAllString(lease, " "))
	assert.Equal(t, original, joined)
}

func TestNumberClauses(t *testing.T) {
	clauses := NumberClauses(SegmentClauses(lease))

	require.Len(t, clauses, 4)
	for i, c := range clauses {
		assert.Equal(t, i+1, c.ID)
		assert.NotEmpty(t, c.Text)
	}
	assert.Empty(t, NumberClauses(nil))
}
