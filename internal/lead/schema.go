package lead

import (
	"fmt"
	"strconv"
	"strings"
)

// SchemaVersion identifies the column layout below. Cell updates address
// columns by position, so the layout is verified against the live header at
// startup instead of being trusted implicitly.
const SchemaVersion = 1

// Column is a 1-based worksheet column position.
type Column int

const (
	ColTitle Column = iota + 1
	ColWebsite
	ColEmail
	ColValidEmail
	ColLocation
	ColDomain
	ColPhone
	ColCategory
	ColSendDate
	ColSendTime
	ColSubject
	ColStatus
	ColMailReceived
	ColReplyMessage
	ColMailReplySent
	ColResponse
	ColFollowUp
	ColFollowupCount
	ColLastFollowupDate
	ColFollowupStatus
	ColReplyReceived
	ColReplyDate

	columnCount = int(ColReplyDate)
)

var header = []string{
	"Title", "Website", "Email", "Valid Email", "Location", "Domain",
	"Phone", "Category", "Send Date", "Send Time", "Subject", "Status",
	"Mail Received", "Reply Message", "Mail Reply Sent", "Response",
	"Follow Up", "Follow-up Count", "Last Follow-up Date",
	"Follow-up Status", "Reply Received", "Reply Date",
}

// VerifyHeader checks the live header row against the expected layout. Any
// drift means a column was inserted or renamed and positional updates would
// silently corrupt data, so this is a startup failure.
func VerifyHeader(row []string) error {
	if len(row) < columnCount {
		return fmt.Errorf("leads worksheet has %d columns, schema v%d expects %d", len(row), SchemaVersion, columnCount)
	}
	for i, want := range header {
		got := strings.TrimSpace(row[i])
		if !strings.EqualFold(got, want) {
			return fmt.Errorf("leads worksheet column %d is %q, schema v%d expects %q", i+1, got, SchemaVersion, want)
		}
	}
	return nil
}

// FromRow decodes one worksheet row. Short rows are padded; a malformed
// follow-up count coerces to zero rather than aborting the run.
func FromRow(rowNum int, cells []string) Lead {
	padded := make([]string, columnCount)
	for i := range padded {
		if i < len(cells) {
			padded[i] = strings.TrimSpace(cells[i])
		}
	}

	cell := func(c Column) string { return padded[int(c)-1] }

	count, err := strconv.Atoi(cell(ColFollowupCount))
	if err != nil {
		count = 0
	}

	return Lead{
		Row:              rowNum,
		Title:            cell(ColTitle),
		Website:          cell(ColWebsite),
		Email:            cell(ColEmail),
		ValidEmail:       cell(ColValidEmail),
		Location:         cell(ColLocation),
		Domain:           cell(ColDomain),
		Phone:            cell(ColPhone),
		Category:         cell(ColCategory),
		SendDate:         cell(ColSendDate),
		SendTime:         cell(ColSendTime),
		Subject:          cell(ColSubject),
		Status:           Status(cell(ColStatus)),
		MailReceived:     cell(ColMailReceived),
		ReplyMessage:     cell(ColReplyMessage),
		MailReplySent:    cell(ColMailReplySent),
		Response:         cell(ColResponse),
		FollowUp:         cell(ColFollowUp),
		FollowupCount:    count,
		LastFollowupDate: cell(ColLastFollowupDate),
		FollowupStatus:   cell(ColFollowupStatus),
		ReplyReceived:    cell(ColReplyReceived),
		ReplyDate:        cell(ColReplyDate),
	}
}

// ToRow encodes a lead for a batch append.
func (l Lead) ToRow() []string {
	row := make([]string, columnCount)
	set := func(c Column, v string) { row[int(c)-1] = v }

	set(ColTitle, l.Title)
	set(ColWebsite, l.Website)
	set(ColEmail, l.Email)
	set(ColValidEmail, l.ValidEmail)
	set(ColLocation, l.Location)
	set(ColDomain, l.Domain)
	set(ColPhone, l.Phone)
	set(ColCategory, l.Category)
	set(ColSendDate, l.SendDate)
	set(ColSendTime, l.SendTime)
	set(ColSubject, l.Subject)
	set(ColStatus, string(l.Status))
	set(ColMailReceived, l.MailReceived)
	set(ColReplyMessage, l.ReplyMessage)
	set(ColMailReplySent, l.MailReplySent)
	set(ColResponse, l.Response)
	set(ColFollowUp, l.FollowUp)
	set(ColFollowupCount, strconv.Itoa(l.FollowupCount))
	set(ColLastFollowupDate, l.LastFollowupDate)
	set(ColFollowupStatus, l.FollowupStatus)
	set(ColReplyReceived, l.ReplyReceived)
	set(ColReplyDate, l.ReplyDate)
	return row
}
