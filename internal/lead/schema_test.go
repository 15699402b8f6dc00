package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyHeaderAcceptsExpectedLayout(t *testing.T) {
	row := append([]string(nil), header...)
	assert.NoError(t, VerifyHeader(row))
}

func TestVerifyHeaderIsCaseInsensitive(t *testing.T) {
	row := append([]string(nil), header...)
	row[0] = "TITLE"
	row[3] = " valid email "
	assert.NoError(t, VerifyHeader(row))
}

func TestVerifyHeaderRejectsDrift(t *testing.T) {
	short := append([]string(nil), header[:10]...)
	assert.Error(t, VerifyHeader(short))

	renamed := append([]string(nil), header...)
	renamed[11] = "State"
	err := VerifyHeader(renamed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 12")
}

func TestFromRowPadsShortRows(t *testing.T) {
	l := FromRow(7, []string{"Acme Trading", "https://acme.example"})

	assert.Equal(t, 7, l.Row)
	assert.Equal(t, "Acme Trading", l.Title)
	assert.Equal(t, "https://acme.example", l.Website)
	assert.Equal(t, "", l.ValidEmail)
	assert.Equal(t, 0, l.FollowupCount)
}

func TestFromRowCoercesBadFollowupCount(t *testing.T) {
	cells := make([]string, columnCount)
	cells[int(ColFollowupCount)-1] = "not a number"
	assert.Equal(t, 0, FromRow(2, cells).FollowupCount)

	cells[int(ColFollowupCount)-1] = "2"
	assert.Equal(t, 2, FromRow(2, cells).FollowupCount)
}

func TestToRowRoundTrip(t *testing.T) {
	in := Lead{
		Title:         "Acme Trading",
		Website:       "https://acme.example",
		Email:         "a@acme.example, b@acme.example",
		ValidEmail:    "a@acme.example",
		Phone:         "+971501234567",
		Category:      "Dental Clinic",
		Status:        StatusSent,
		SendDate:      "2026-08-20",
		FollowupCount: 1,
		ReplyReceived: ClassNotInterested,
	}

	out := FromRow(2, in.ToRow())
	in.Row = 2
	assert.Equal(t, in, out)
}

func TestHasStatusIgnoresCaseAndSpace(t *testing.T) {
	l := Lead{Status: " sent "}
	assert.True(t, l.HasStatus(StatusSent))
	assert.False(t, l.HasStatus(StatusWaiting))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-08-20 ")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())

	_, err = ParseDate("20/08/2026")
	assert.Error(t, err)
}
