package bdcom

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nanoncore/nano-outage/logger"
	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/common"
)

// Adapter wraps a base driver with BDCOM-specific logic
// BDCOM EPON OLTs (P3608, P3616 series) expose ONU state and last
// deregistration data only through their enterprise SNMP MIB.
type Adapter struct {
	baseDriver   types.Driver
	snmpExecutor types.SNMPExecutor
	config       *types.EquipmentConfig
	logger       zerolog.Logger
}

// NewAdapter creates a new BDCOM adapter
func NewAdapter(baseDriver types.Driver, config *types.EquipmentConfig) types.OutageDriver {
	adapter := &Adapter{
		baseDriver: baseDriver,
		config:     config,
		logger:     logger.WithComponent("bdcom").With().Str("device", config.Address).Logger(),
	}

	// Check if base driver supports SNMP execution
	if executor, ok := baseDriver.(types.SNMPExecutor); ok {
		adapter.snmpExecutor = executor
	}

	return adapter
}

// SetLogger replaces the adapter logger.
func (a *Adapter) SetLogger(l zerolog.Logger) {
	a.logger = l.With().Str("device", a.config.Address).Logger()
}

func (a *Adapter) Connect(ctx context.Context, config *types.EquipmentConfig) error {
	return a.baseDriver.Connect(ctx, config)
}

func (a *Adapter) Disconnect(ctx context.Context) error {
	return a.baseDriver.Disconnect(ctx)
}

func (a *Adapter) IsConnected() bool {
	return a.baseDriver.IsConnected()
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	return a.baseDriver.HealthCheck(ctx)
}

// GetEquipmentStatus reads the MIB-II system group. sysDescr is what the
// poller matches against the model denylist.
func (a *Adapter) GetEquipmentStatus(ctx context.Context) (*types.EquipmentStatus, error) {
	if a.snmpExecutor == nil {
		return nil, fmt.Errorf("SNMP executor not available - BDCOM requires SNMP driver")
	}

	results, err := a.snmpExecutor.BulkGetSNMP(ctx, []string{OIDSysDescr, OIDSysName, OIDSysUpTime})
	if err != nil {
		return nil, fmt.Errorf("failed to get system info: %w", err)
	}

	status := &types.EquipmentStatus{
		IsReachable: true,
		Metadata: map[string]interface{}{
			"vendor": string(types.VendorBDCOM),
		},
	}

	if v, ok := common.GetSNMPResult(results, OIDSysDescr); ok {
		if s, ok := common.ParseStringSNMPValue(v); ok {
			status.Description = common.SanitizeDescription(s)
		}
	}
	if v, ok := common.GetSNMPResult(results, OIDSysName); ok {
		if s, ok := common.ParseStringSNMPValue(v); ok {
			status.Name = common.SanitizeDescription(s)
		}
	}
	if v, ok := common.GetSNMPResult(results, OIDSysUpTime); ok {
		if ticks, ok := common.ParseIntSNMPValue(v); ok {
			status.UptimeSeconds = ticks / 100
		}
	}

	return status, nil
}

// Ensure Adapter implements OutageDriver
var _ types.OutageDriver = (*Adapter)(nil)
