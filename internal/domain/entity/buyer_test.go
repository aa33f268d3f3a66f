package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyerProfile_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		buyer    BuyerProfile
		wantSTRN string
	}{
		{
			name:     "unregistered buyer gets the sentinel",
			buyer:    BuyerProfile{Type: BuyerTypeUnregistered, STRN: "32-00-5205-001-22"},
			wantSTRN: UnregisteredSTRN,
		},
		{
			name:     "unregistered buyer with empty STRN gets the sentinel",
			buyer:    BuyerProfile{Type: BuyerTypeUnregistered, STRN: ""},
			wantSTRN: UnregisteredSTRN,
		},
		{
			name:     "switching back to registered clears the sentinel",
			buyer:    BuyerProfile{Type: BuyerTypeRegistered, STRN: UnregisteredSTRN},
			wantSTRN: "",
		},
		{
			name:     "registered buyer keeps a real STRN",
			buyer:    BuyerProfile{Type: BuyerTypeRegistered, STRN: "32-00-5205-001-22"},
			wantSTRN: "32-00-5205-001-22",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.buyer.Normalize()
			assert.Equal(t, tt.wantSTRN, tt.buyer.STRN)
		})
	}
}

func TestBuyerProfile_Validate(t *testing.T) {
	complete := func() BuyerProfile {
		return BuyerProfile{
			Name:                "XYZ Textiles Ltd",
			STRN:                "32-00-5205-001-22",
			Type:                BuyerTypeRegistered,
			DestinationProvince: ProvinceSindh,
		}
	}

	t.Run("complete registered buyer passes", func(t *testing.T) {
		b := complete()
		assert.NoError(t, b.Validate())
	})

	t.Run("registered buyer with malformed STRN", func(t *testing.T) {
		for _, strn := range []string{"", "32005205", "32-00-5205-001", UnregisteredSTRN, "ab-cd-efgh-ijk-lm"} {
			b := complete()
			b.STRN = strn
			err := b.Validate()
			require.Error(t, err, "STRN %q", strn)
			assert.ErrorIs(t, err, ErrMalformedSTRN, "STRN %q", strn)
		}
	})

	t.Run("unregistered buyer skips the STRN pattern", func(t *testing.T) {
		b := complete()
		b.Type = BuyerTypeUnregistered
		b.Normalize()
		assert.NoError(t, b.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		b := complete()
		b.Name = ""
		err := b.Validate()
		assert.ErrorIs(t, err, ErrIncompleteInvoice)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Details, "name")
	})

	t.Run("missing destination province", func(t *testing.T) {
		b := complete()
		b.DestinationProvince = ""
		assert.ErrorIs(t, b.Validate(), ErrIncompleteInvoice)
	})
}
