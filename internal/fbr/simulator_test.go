package fbr

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abcenterprises/fbr-einvoicing/internal/application/port"
	"github.com/abcenterprises/fbr-einvoicing/internal/domain/entity"
)

func submittedInvoice(number, strn string) *entity.Invoice {
	return &entity.Invoice{
		InvoiceNumber: number,
		SaleType:      entity.SaleTypeStandard,
		Buyer: entity.BuyerProfile{
			Name:                "XYZ Textiles Ltd",
			STRN:                strn,
			Type:                entity.BuyerTypeRegistered,
			DestinationProvince: entity.ProvinceSindh,
		},
		LineItems: []entity.LineItem{{
			Quantity:   decimal.NewFromInt(10),
			Unit:       entity.UnitKG,
			Rate:       decimal.RequireFromString("485.50"),
			TaxPercent: decimal.NewFromInt(18),
		}},
	}
}

func TestSimulator_ValidatesWellFormedInvoice(t *testing.T) {
	sim := NewSimulator(Config{}, zap.NewNop())

	ack, err := sim.Submit(context.Background(), submittedInvoice("INV-1001", "32-00-5205-001-22"))
	require.NoError(t, err)

	assert.Equal(t, port.AckValidated, ack.Outcome)
	assert.True(t, strings.HasPrefix(ack.FBRNumber, "FBR-"))
	assert.Len(t, ack.FBRNumber, 9)
}

func TestSimulator_RejectsDeniedSTRN(t *testing.T) {
	sim := NewSimulator(Config{DeniedSTRNs: []string{"32-00-5205-001-22"}}, zap.NewNop())

	ack, err := sim.Submit(context.Background(), submittedInvoice("INV-1002", "32-00-5205-001-22"))
	require.NoError(t, err)

	assert.Equal(t, port.AckRejected, ack.Outcome)
	assert.Contains(t, ack.Reason, "not found in FBR registry")
	assert.Empty(t, ack.FBRNumber)
}

func TestSimulator_IdempotentPerInvoiceNumber(t *testing.T) {
	sim := NewSimulator(Config{}, zap.NewNop())
	inv := submittedInvoice("INV-1003", "32-00-5205-001-22")

	first, err := sim.Submit(context.Background(), inv)
	require.NoError(t, err)
	second, err := sim.Submit(context.Background(), inv)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.FBRNumber, second.FBRNumber)
}

func TestSimulator_StatusBeforeAndAfterSubmit(t *testing.T) {
	sim := NewSimulator(Config{}, zap.NewNop())

	pending, err := sim.Status(context.Background(), "INV-1004")
	require.NoError(t, err)
	assert.Equal(t, port.AckPending, pending.Outcome)

	_, err = sim.Submit(context.Background(), submittedInvoice("INV-1004", "32-00-5205-001-22"))
	require.NoError(t, err)

	resolved, err := sim.Status(context.Background(), "INV-1004")
	require.NoError(t, err)
	assert.Equal(t, port.AckValidated, resolved.Outcome)
}

func TestDeriveFBRNumber_Stable(t *testing.T) {
	a := deriveFBRNumber("INV-1771102188212")
	b := deriveFBRNumber("INV-1771102188212")
	c := deriveFBRNumber("INV-1771105367748")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
