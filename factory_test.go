package southbound

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoncore/nano-outage/vendors/bdcom"
)

func TestNewDriver(t *testing.T) {
	tests := map[string]struct {
		vendor   Vendor
		protocol Protocol
		config   *EquipmentConfig
		wantErr  bool
	}{
		"bdcom default protocol": {
			vendor: VendorBDCOM,
			config: &EquipmentConfig{Address: "192.0.2.1"},
		},
		"bdcom snmp": {
			vendor:   VendorBDCOM,
			protocol: ProtocolSNMP,
			config:   &EquipmentConfig{Address: "192.0.2.1"},
		},
		"mock": {
			vendor: VendorMock,
			config: &EquipmentConfig{Address: "sim"},
		},
		"unknown vendor": {
			vendor:  Vendor("huawei"),
			config:  &EquipmentConfig{Address: "192.0.2.1"},
			wantErr: true,
		},
		"unsupported protocol": {
			vendor:   VendorBDCOM,
			protocol: Protocol("netconf"),
			config:   &EquipmentConfig{Address: "192.0.2.1"},
			wantErr:  true,
		},
		"missing address": {
			vendor:  VendorBDCOM,
			config:  &EquipmentConfig{},
			wantErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			drv, err := NewDriver(test.vendor, test.protocol, test.config)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, (*bdcom.Adapter)(nil), drv)
		})
	}
}

func TestNewDriver_MockCollects(t *testing.T) {
	drv, err := NewDriver(VendorMock, "", &EquipmentConfig{Address: "sim"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, drv.Connect(ctx, nil))
	defer drv.Disconnect(ctx) //nolint:errcheck

	status, err := drv.GetEquipmentStatus(ctx)
	require.NoError(t, err)
	assert.Contains(t, status.Description, "BDCOM")

	inv, err := drv.CollectONUs(ctx)
	require.NoError(t, err)
	assert.Positive(t, inv.ONUCount())
}

func TestGetSupportedVendors(t *testing.T) {
	assert.Equal(t, []Vendor{VendorBDCOM, VendorMock}, GetSupportedVendors())

	caps, ok := GetVendorCapabilities(VendorBDCOM)
	require.True(t, ok)
	assert.Equal(t, ProtocolSNMP, caps.PrimaryProtocol)
	assert.True(t, caps.SupportsDeregReason)

	_, ok = GetVendorCapabilities(Vendor("zte"))
	assert.False(t, ok)
}
