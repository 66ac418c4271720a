package shipments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/brewhouse-backend/pkg/db/models"
	"github.com/angelmondragon/brewhouse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func TestRulesApply(t *testing.T) {
	rules := Rules{Now: func() time.Time { return fixedNow }}
	earlier := fixedNow.Add(-48 * time.Hour)

	cases := []struct {
		name        string
		shipment    models.BeerOrderShipment
		wantErr     bool
		wantShipped *time.Time
		wantStatus  enums.ShipmentStatus
	}{
		{name: "empty status defaults to pending", shipment: models.BeerOrderShipment{}, wantStatus: enums.ShipmentStatusPending},
		{name: "packed needs nothing", shipment: models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusPacked}, wantStatus: enums.ShipmentStatusPacked},
		{name: "in transit without tracking", shipment: models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusInTransit, Carrier: ptr("UPS")}, wantErr: true},
		{name: "in transit with blank carrier", shipment: models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusInTransit, TrackingNumber: ptr("1Z"), Carrier: ptr("   ")}, wantErr: true},
		{
			name:        "in transit stamps shipped date",
			shipment:    models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusInTransit, TrackingNumber: ptr("1Z"), Carrier: ptr("UPS")},
			wantShipped: &fixedNow,
			wantStatus:  enums.ShipmentStatusInTransit,
		},
		{
			name:        "existing shipped date is kept",
			shipment:    models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusDelivered, TrackingNumber: ptr("1Z"), Carrier: ptr("UPS"), ShippedDate: &earlier},
			wantShipped: &earlier,
			wantStatus:  enums.ShipmentStatusDelivered,
		},
		{name: "cancelled ranks past in transit", shipment: models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusCancelled}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shipment := tc.shipment
			err := rules.Apply(&shipment)
			if tc.wantErr {
				typed := pkgerrors.As(err)
				require.NotNil(t, typed)
				assert.Equal(t, pkgerrors.CodeBusinessRule, typed.Code())
				details := typed.Details().(map[string]string)
				assert.Contains(t, details, "trackingNumber")
				assert.Contains(t, details, "carrier")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, shipment.ShipmentStatus)
			if tc.wantShipped == nil {
				assert.Nil(t, shipment.ShippedDate)
				return
			}
			require.NotNil(t, shipment.ShippedDate)
			assert.True(t, tc.wantShipped.Equal(*shipment.ShippedDate))
		})
	}
}

func TestRulesCancelledExempt(t *testing.T) {
	rules := Rules{CancelledExempt: true, Now: func() time.Time { return fixedNow }}
	shipment := models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusCancelled}
	require.NoError(t, rules.Apply(&shipment))
	assert.Nil(t, shipment.ShippedDate)

	delivered := models.BeerOrderShipment{ShipmentStatus: enums.ShipmentStatusDelivered}
	require.True(t, pkgerrors.IsCode(rules.Apply(&delivered), pkgerrors.CodeBusinessRule))
}
