package snmp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gosnmp/gosnmp"
	snmpmock "github.com/gosnmp/gosnmp/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/common"
)

func prepareConfig() *types.EquipmentConfig {
	return &types.EquipmentConfig{
		Name:     "olt-1",
		Type:     types.EquipmentTypeOLT,
		Vendor:   types.VendorBDCOM,
		Address:  "192.0.2.10",
		Protocol: types.ProtocolSNMP,
		Timeout:  time.Second,
		Retries:  1,
		Metadata: map[string]string{common.MetaSNMPCommunity: "public"},
	}
}

func newConnectedDriver(t *testing.T, version gosnmp.SnmpVersion) (*Driver, *snmpmock.MockHandler) {
	t.Helper()
	mockCtl := gomock.NewController(t)
	m := snmpmock.NewMockHandler(mockCtl)
	m.EXPECT().SetContext(gomock.Any()).AnyTimes()
	return &Driver{config: prepareConfig(), snmp: m, version: version}, m
}

func setMockClientSetExpect(m *snmpmock.MockHandler) {
	m.EXPECT().SetTarget(gomock.Any()).AnyTimes()
	m.EXPECT().SetPort(gomock.Any()).AnyTimes()
	m.EXPECT().SetRetries(gomock.Any()).AnyTimes()
	m.EXPECT().SetMaxRepetitions(gomock.Any()).AnyTimes()
	m.EXPECT().SetTimeout(gomock.Any()).AnyTimes()
	m.EXPECT().SetCommunity(gomock.Any()).AnyTimes()
	m.EXPECT().SetVersion(gomock.Any()).AnyTimes()
	m.EXPECT().SetSecurityModel(gomock.Any()).AnyTimes()
	m.EXPECT().SetMsgFlags(gomock.Any()).AnyTimes()
	m.EXPECT().SetSecurityParameters(gomock.Any()).AnyTimes()
	m.EXPECT().SetContext(gomock.Any()).AnyTimes()
}

func TestNewDriver(t *testing.T) {
	tests := map[string]struct {
		config  *types.EquipmentConfig
		wantErr bool
	}{
		"nil config":      {config: nil, wantErr: true},
		"missing address": {config: &types.EquipmentConfig{}, wantErr: true},
		"valid":           {config: prepareConfig()},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := NewDriver(test.config)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, (*Driver)(nil), d)
			assert.Equal(t, defaultPort, test.config.Port)
		})
	}
}

func TestDriver_Connect(t *testing.T) {
	tests := map[string]struct {
		metadata   map[string]string
		username   string
		connectErr error
		wantErr    error
		wantFail   bool
	}{
		"v2c":                {metadata: map[string]string{common.MetaSNMPVersion: "2c"}},
		"v1":                 {metadata: map[string]string{common.MetaSNMPVersion: "1"}},
		"v3 with user":       {metadata: map[string]string{common.MetaSNMPVersion: "3"}, username: "monitor"},
		"v3 without user":    {metadata: map[string]string{common.MetaSNMPVersion: "3"}, wantFail: true},
		"invalid version":    {metadata: map[string]string{common.MetaSNMPVersion: "9"}, wantFail: true},
		"connect error":      {connectErr: errors.New("dial udp: no route to host"), wantFail: true, wantErr: types.ErrSessionTimeout},
		"empty metadata v2c": {},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			mockCtl := gomock.NewController(t)
			m := snmpmock.NewMockHandler(mockCtl)
			setMockClientSetExpect(m)
			m.EXPECT().Connect().Return(test.connectErr).AnyTimes()

			cfg := prepareConfig()
			cfg.Metadata = test.metadata
			cfg.Username = test.username
			d := &Driver{config: cfg, newClient: func() gosnmp.Handler { return m }}

			err := d.Connect(context.Background(), nil)
			if test.wantFail {
				require.Error(t, err)
				if test.wantErr != nil {
					assert.ErrorIs(t, err, test.wantErr)
				}
				assert.False(t, d.IsConnected())
				return
			}
			require.NoError(t, err)
			assert.True(t, d.IsConnected())
		})
	}
}

func TestDriver_Disconnect(t *testing.T) {
	d, m := newConnectedDriver(t, gosnmp.Version2c)
	m.EXPECT().Close().Return(nil).Times(1)

	require.NoError(t, d.Disconnect(context.Background()))
	assert.False(t, d.IsConnected())
	assert.NoError(t, d.Disconnect(context.Background()))
}

func TestDriver_GetSNMP(t *testing.T) {
	tests := map[string]struct {
		packet    *gosnmp.SnmpPacket
		getErr    error
		wantValue interface{}
		wantErr   error
	}{
		"octet string": {
			packet: &gosnmp.SnmpPacket{Variables: []gosnmp.SnmpPDU{
				{Name: ".1.3.6.1.2.1.2.2.1.2.12", Type: gosnmp.OctetString, Value: []byte("EPON0/1:3")},
			}},
			wantValue: []byte("EPON0/1:3"),
		},
		"integer": {
			packet: &gosnmp.SnmpPacket{Variables: []gosnmp.SnmpPDU{
				{Name: ".1.3.6.1.4.1.3320.101.10.1.1.26.12", Type: gosnmp.Integer, Value: 2},
			}},
			wantValue: int64(2),
		},
		"timeticks": {
			packet: &gosnmp.SnmpPacket{Variables: []gosnmp.SnmpPDU{
				{Name: ".1.3.6.1.2.1.1.3.0", Type: gosnmp.TimeTicks, Value: uint32(12345)},
			}},
			wantValue: uint64(12345),
		},
		"no such instance": {
			packet: &gosnmp.SnmpPacket{Variables: []gosnmp.SnmpPDU{
				{Name: ".1.3.6.1.4.1.3320.101.10.1.1.26.99", Type: gosnmp.NoSuchInstance},
			}},
			wantErr: types.ErrNoSuchObject,
		},
		"agent error status": {
			packet:  &gosnmp.SnmpPacket{Error: gosnmp.NoSuchName},
			wantErr: types.ErrNoSuchObject,
		},
		"request timeout": {
			getErr:  errors.New("request timeout (after 1 retries)"),
			wantErr: types.ErrSessionTimeout,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			d, m := newConnectedDriver(t, gosnmp.Version2c)
			m.EXPECT().Get(gomock.Any()).Return(test.packet, test.getErr).Times(1)

			v, err := d.GetSNMP(context.Background(), ".1.3.6.1.2.1.2.2.1.2.12")
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantValue, v)
		})
	}
}

func TestDriver_GetSNMP_NotConnected(t *testing.T) {
	d := &Driver{config: prepareConfig()}

	_, err := d.GetSNMP(context.Background(), "1.3.6.1.2.1.1.1.0")
	assert.ErrorIs(t, err, types.ErrNotConnected)
}

func TestDriver_GetSNMP_CanceledContext(t *testing.T) {
	d, _ := newConnectedDriver(t, gosnmp.Version2c)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.GetSNMP(ctx, "1.3.6.1.2.1.1.1.0")
	assert.ErrorIs(t, err, context.Canceled)
}

type requestKey struct{}

func TestDriver_RequestsRunUnderCallerContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), requestKey{}, "poll")

	t.Run("get", func(t *testing.T) {
		m := snmpmock.NewMockHandler(gomock.NewController(t))
		d := &Driver{config: prepareConfig(), snmp: m, version: gosnmp.Version2c}
		gomock.InOrder(
			m.EXPECT().SetContext(ctx).Times(1),
			m.EXPECT().Get([]string{"1.3.6.1.2.1.1.1.0"}).Return(&gosnmp.SnmpPacket{
				Variables: []gosnmp.SnmpPDU{{Name: ".1.3.6.1.2.1.1.1.0", Type: gosnmp.OctetString, Value: []byte("BDCOM")}},
			}, nil).Times(1),
		)

		_, err := d.GetSNMP(ctx, "1.3.6.1.2.1.1.1.0")
		assert.NoError(t, err)
	})

	t.Run("walk", func(t *testing.T) {
		m := snmpmock.NewMockHandler(gomock.NewController(t))
		d := &Driver{config: prepareConfig(), snmp: m, version: gosnmp.Version2c}
		gomock.InOrder(
			m.EXPECT().SetContext(ctx).Times(1),
			m.EXPECT().BulkWalkAll("1.3.6.1.2.1.2.2.1.2").Return(nil, nil).Times(1),
		)

		_, err := d.WalkSNMP(ctx, "1.3.6.1.2.1.2.2.1.2")
		assert.NoError(t, err)
	})
}

func TestDriver_CancelDuringRequest(t *testing.T) {
	d, m := newConnectedDriver(t, gosnmp.Version2c)
	ctx, cancel := context.WithCancel(context.Background())

	m.EXPECT().BulkWalkAll(gomock.Any()).DoAndReturn(func(string) ([]gosnmp.SnmpPDU, error) {
		cancel()
		return nil, context.Canceled
	}).Times(1)

	_, err := d.WalkSNMP(ctx, "1.3.6.1.4.1.3320.101.9.1.1.1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, types.ErrSessionTimeout)
}

func TestDriver_WalkSNMP(t *testing.T) {
	const base = "1.3.6.1.4.1.3320.101.9.1.1.1"
	pdus := []gosnmp.SnmpPDU{
		{Name: ".1.3.6.1.4.1.3320.101.9.1.1.1.14", Type: gosnmp.Integer, Value: 14},
		{Name: ".1.3.6.1.4.1.3320.101.9.1.1.1.12", Type: gosnmp.Integer, Value: 12},
		{Name: ".1.3.6.1.4.1.3320.101.9.1.1.1.13", Type: gosnmp.EndOfMibView},
	}

	t.Run("bulk walk keeps agent order", func(t *testing.T) {
		d, m := newConnectedDriver(t, gosnmp.Version2c)
		m.EXPECT().BulkWalkAll(base).Return(pdus, nil).Times(1)

		vars, err := d.WalkSNMP(context.Background(), "."+base)
		require.NoError(t, err)
		require.Len(t, vars, 2)
		assert.Equal(t, "14", vars[0].Index)
		assert.Equal(t, base+".14", vars[0].OID)
		assert.Equal(t, int64(14), vars[0].Value)
		assert.Equal(t, "12", vars[1].Index)
	})

	t.Run("v1 uses get-next walk", func(t *testing.T) {
		d, m := newConnectedDriver(t, gosnmp.Version1)
		m.EXPECT().WalkAll(base).Return(pdus[:1], nil).Times(1)

		vars, err := d.WalkSNMP(context.Background(), base)
		require.NoError(t, err)
		assert.Len(t, vars, 1)
	})

	t.Run("walk failure is a session timeout", func(t *testing.T) {
		d, m := newConnectedDriver(t, gosnmp.Version2c)
		m.EXPECT().BulkWalkAll(base).Return(nil, errors.New("request timeout (after 1 retries)")).Times(1)

		_, err := d.WalkSNMP(context.Background(), base)
		assert.ErrorIs(t, err, types.ErrSessionTimeout)
	})
}

func TestDriver_BulkGetSNMP(t *testing.T) {
	d, m := newConnectedDriver(t, gosnmp.Version2c)
	m.EXPECT().Get([]string{"1.3.6.1.2.1.1.1.0", "1.3.6.1.2.1.1.5.0"}).Return(&gosnmp.SnmpPacket{
		Variables: []gosnmp.SnmpPDU{
			{Name: ".1.3.6.1.2.1.1.1.0", Type: gosnmp.OctetString, Value: []byte("BDCOM P3608")},
			{Name: ".1.3.6.1.2.1.1.5.0", Type: gosnmp.NoSuchObject},
		},
	}, nil).Times(1)

	res, err := d.BulkGetSNMP(context.Background(), []string{".1.3.6.1.2.1.1.1.0", "1.3.6.1.2.1.1.5.0"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"1.3.6.1.2.1.1.1.0": []byte("BDCOM P3608")}, res)
}

func TestDriver_HealthCheck(t *testing.T) {
	d, m := newConnectedDriver(t, gosnmp.Version2c)
	m.EXPECT().Get([]string{"1.3.6.1.2.1.1.1.0"}).Return(&gosnmp.SnmpPacket{
		Variables: []gosnmp.SnmpPDU{{Name: ".1.3.6.1.2.1.1.1.0", Type: gosnmp.OctetString, Value: []byte("BDCOM")}},
	}, nil).Times(1)

	assert.NoError(t, d.HealthCheck(context.Background()))
}

func TestParseVersion(t *testing.T) {
	tests := map[string]gosnmp.SnmpVersion{
		"1":   gosnmp.Version1,
		"v2c": gosnmp.Version2c,
		"":    gosnmp.Version2c,
		"3":   gosnmp.Version3,
	}
	for in, want := range tests {
		got, err := parseVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseVersion("4")
	assert.Error(t, err)
}
