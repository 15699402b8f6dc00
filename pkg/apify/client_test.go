package apify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailFieldJoinsEmailsList(t *testing.T) {
	p := Place{Emails: []string{"a@x.example", " ", "b@x.example"}}
	assert.Equal(t, "a@x.example, b@x.example", p.EmailField())
}

func TestEmailFieldFallbackOrder(t *testing.T) {
	p := Place{ContactEmail: "contact@x.example", PrimaryEmail: "primary@x.example"}
	assert.Equal(t, "contact@x.example", p.EmailField())

	p = Place{Email: " direct@x.example "}
	assert.Equal(t, "direct@x.example", p.EmailField())

	assert.Equal(t, "", (&Place{}).EmailField())
}

func TestPhoneNumberPrefersFormatted(t *testing.T) {
	p := Place{Phone: "+971 4 123 4567", PhoneUnformatted: "97141234567"}
	assert.Equal(t, "+971 4 123 4567", p.PhoneNumber())

	p = Place{PhoneUnformatted: " 97141234567 "}
	assert.Equal(t, "97141234567", p.PhoneNumber())
}
