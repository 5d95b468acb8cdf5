package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/bdcom"
)

func newConnected(t *testing.T) *Driver {
	t.Helper()
	d := NewEmptyDriver(&types.EquipmentConfig{Name: "sim", Address: "192.0.2.50", Retries: 1})
	require.NoError(t, d.Connect(context.Background(), nil))
	return d
}

func TestNewDriver(t *testing.T) {
	_, err := NewDriver(nil)
	assert.Error(t, err)

	drv, err := NewDriver(&types.EquipmentConfig{Address: "192.0.2.50"})
	require.NoError(t, err)
	assert.False(t, drv.IsConnected())

	_, ok := drv.(types.SNMPExecutor)
	assert.True(t, ok)
}

func TestDriver_NotConnected(t *testing.T) {
	d := NewEmptyDriver(&types.EquipmentConfig{Address: "192.0.2.50"})

	_, err := d.GetSNMP(context.Background(), bdcom.OIDSysDescr)
	assert.ErrorIs(t, err, types.ErrNotConnected)
}

func TestDriver_ConnectDisconnect(t *testing.T) {
	d := newConnected(t)
	assert.True(t, d.IsConnected())
	assert.NoError(t, d.HealthCheck(context.Background()))

	require.NoError(t, d.Disconnect(context.Background()))
	assert.False(t, d.IsConnected())

	history := d.GetRequestHistory()
	assert.Equal(t, "connect", history[0])
	assert.Equal(t, "disconnect", history[len(history)-1])
}

func TestDriver_GetSNMP(t *testing.T) {
	d := newConnected(t)

	v, err := d.GetSNMP(context.Background(), "."+bdcom.OIDSysDescr)
	require.NoError(t, err)
	assert.Equal(t, []byte(DefaultSysDescr), v)

	_, err = d.GetSNMP(context.Background(), "1.3.6.1.2.1.1.99.0")
	assert.ErrorIs(t, err, types.ErrNoSuchObject)
}

func TestDriver_WalkSNMPOrder(t *testing.T) {
	d := newConnected(t)
	d.AddBranch("EPON0/10", 100)
	d.AddBranch("EPON0/2", 13)
	d.AddBranch("EPON0/1", 12)

	vars, err := d.WalkSNMP(context.Background(), bdcom.OIDIfDescr)
	require.NoError(t, err)
	require.Len(t, vars, 3)

	assert.Equal(t, "12", vars[0].Index)
	assert.Equal(t, "13", vars[1].Index)
	assert.Equal(t, "100", vars[2].Index)
	assert.Equal(t, "OctetString", vars[0].Type)
}

func TestDriver_AddONU(t *testing.T) {
	d := newConnected(t)
	d.AddBranch("EPON0/1", 12)
	at := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	require.NoError(t, d.AddONU(SimulatedONU{
		IfIndex: 60, Branch: "EPON0/1", ONUNumber: 3, MAC: "00:1a:2b:3c:4d:5e",
		Status: 2, Reason: 8, DeregTime: at,
	}))

	ctx := context.Background()

	v, err := d.GetSNMP(ctx, bdcom.OIDIfDescr+".60")
	require.NoError(t, err)
	assert.Equal(t, []byte("EPON0/1:3"), v)

	v, err = d.GetSNMP(ctx, bdcom.OIDOnuMAC+".60")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x1a, 0x2b, 0x3c, 0x4d, 0x5e}, v)

	v, err = d.GetSNMP(ctx, "1.3.6.1.4.1.3320.101.11.1.1.10.12.0.26.43.60.77.94")
	require.NoError(t, err)
	decoded, err := bdcom.DecodeDeregTime(v.([]byte))
	require.NoError(t, err)
	assert.True(t, at.Equal(decoded))

	v, err = d.GetSNMP(ctx, "1.3.6.1.4.1.3320.101.11.1.1.11.12.0.26.43.60.77.94")
	require.NoError(t, err)
	assert.Equal(t, int64(8), v)

	assert.Error(t, d.AddONU(SimulatedONU{IfIndex: 61, MAC: "not-a-mac"}))
}

func TestDriver_BulkGetSNMP(t *testing.T) {
	d := newConnected(t)

	res, err := d.BulkGetSNMP(context.Background(), []string{bdcom.OIDSysDescr, "1.3.6.1.2.1.1.99.0"})
	require.NoError(t, err)
	assert.Len(t, res, 1)
	assert.Contains(t, res, bdcom.OIDSysDescr)

	boom := errors.New("boom")
	d.FailOID(bdcom.OIDSysName, boom)
	_, err = d.BulkGetSNMP(context.Background(), []string{bdcom.OIDSysDescr, bdcom.OIDSysName})
	assert.ErrorIs(t, err, boom)

	d.FailOID(bdcom.OIDSysName, nil)
	_, err = d.BulkGetSNMP(context.Background(), []string{bdcom.OIDSysName})
	assert.NoError(t, err)
}

func TestDriver_Unreachable(t *testing.T) {
	d := newConnected(t)
	d.SetUnreachable(true)

	_, err := d.WalkSNMP(context.Background(), bdcom.OIDIfDescr)
	assert.ErrorIs(t, err, types.ErrSessionTimeout)
	assert.True(t, types.IsRecoverable(err))
	assert.Error(t, d.HealthCheck(context.Background()))
}

func TestDriver_LatencyHonorsContext(t *testing.T) {
	d := newConnected(t)
	d.SetLatency(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := d.GetSNMP(ctx, bdcom.OIDSysDescr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEncodeDateAndTime(t *testing.T) {
	b := EncodeDateAndTime(time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC))
	assert.Equal(t, []byte{0x07, 0xe8, 0x03, 0x0f, 0x0a, 0x1e, 0x2d}, b[:7])
	assert.Len(t, b, 11)
}

func TestCompareOID(t *testing.T) {
	assert.Negative(t, compareOID("1.3.6.1.2", "1.3.6.1.10"))
	assert.Positive(t, compareOID("1.3.6.2", "1.3.6.1.5"))
	assert.Negative(t, compareOID("1.3.6", "1.3.6.1"))
	assert.Zero(t, compareOID("1.3.6", "1.3.6"))
}
