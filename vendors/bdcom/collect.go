package bdcom

import (
	"context"
	"errors"
	"fmt"

	"github.com/nanoncore/nano-outage/model"
	"github.com/nanoncore/nano-outage/types"
	"github.com/nanoncore/nano-outage/vendors/common"
)

// Collection stages, reported in model.ONUError.Stage
const (
	StageInventory   = "inventory"
	StagePortBinding = "port_binding"
	StageBranch      = "branch"
	StageMAC         = "mac"
	StageStatus      = "status"
	StageDeregReason = "dereg_reason"
	StageDeregTime   = "dereg_time"
)

// onuFailure is an error confined to one ONU.
type onuFailure struct {
	stage  string
	branch string
	err    error
}

func (f *onuFailure) Error() string { return f.stage + ": " + f.err.Error() }

func (f *onuFailure) Unwrap() error { return f.err }

func fail(stage, branch string, err error) *onuFailure {
	return &onuFailure{stage: stage, branch: branch, err: err}
}

// CollectONUs runs one inventory pass over the OLT.
//
// The two walks (ONU inventory, interface table) must succeed or the pass is
// abandoned. After that every ONU is fetched on its own: a failure is recorded
// in Inventory.Errors and the pass moves on. A branch missing from the
// interface table is excluded with all its ONUs. A cancelled context discards
// whatever was collected.
func (a *Adapter) CollectONUs(ctx context.Context) (*model.Inventory, error) {
	if a.snmpExecutor == nil {
		return nil, fmt.Errorf("SNMP executor not available - BDCOM requires SNMP driver")
	}

	onus, err := a.snmpExecutor.WalkSNMP(ctx, OIDOnuInventory)
	if err != nil {
		return nil, fmt.Errorf("failed to walk ONU inventory: %w", err)
	}

	ifTable, err := a.snmpExecutor.WalkSNMP(ctx, OIDIfDescr)
	if err != nil {
		return nil, fmt.Errorf("failed to walk interface table: %w", err)
	}

	a.logger.Debug().
		Int("onus", len(onus)).
		Int("interfaces", len(ifTable)).
		Msg("Walked ONU inventory")

	inv := model.NewInventory(a.config.Address)
	branches := newBranchResolver(ifTable)
	attempted, timeouts := 0, 0

	for _, v := range onus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		portIndex, ok := onuPortIndex(v)
		if !ok {
			inv.AddError(model.ONUError{
				PortIndex: v.Index,
				Stage:     StageInventory,
				Err:       fmt.Errorf("unexpected inventory value %v (%s)", v.Value, v.Type),
			})
			continue
		}

		attempted++
		rec, err := a.collectONU(ctx, portIndex, branches)
		if err == nil {
			if addErr := inv.AddONU(rec); addErr != nil {
				inv.AddError(model.ONUError{PortIndex: portIndex, Branch: rec.Branch, Stage: StageStatus, Err: addErr})
			}
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var f *onuFailure
		if !errors.As(err, &f) {
			f = fail(StageInventory, "", err)
		}

		if errors.Is(err, types.ErrBranchNotFound) {
			if !inv.IsExcluded(f.branch) {
				a.logger.Warn().Str("branch", f.branch).Msg("Branch not in interface table, excluding it")
			}
			inv.Exclude(f.branch)
			continue
		}

		if errors.Is(err, types.ErrSessionTimeout) {
			timeouts++
		}

		onuErr := model.ONUError{PortIndex: portIndex, Branch: f.branch, Stage: f.stage, Err: f.err}
		msg := "Skipping ONU"
		if types.IsDecodeError(err) {
			msg = "Skipping ONU with malformed data"
		}
		a.logger.Warn().Err(f.err).
			Str("onu", portIndex).
			Str("branch", f.branch).
			Str("stage", f.stage).
			Msg(msg)
		inv.AddError(onuErr)
	}

	if attempted > 0 && timeouts == attempted {
		return nil, fmt.Errorf("all %d ONU requests timed out: %w", timeouts, types.ErrSessionTimeout)
	}

	a.logger.Debug().
		Int("branches", len(inv.Branches)).
		Int("onus", inv.ONUCount()).
		Int("errors", len(inv.Errors)).
		Strs("excluded", inv.Excluded).
		Msg("Collected inventory")

	return inv, nil
}

// collectONU fetches and decodes one ONU. Every returned error is an *onuFailure.
func (a *Adapter) collectONU(ctx context.Context, portIndex string, branches *branchResolver) (model.ONURecord, error) {
	descOID, err := ONUPortOID(OIDIfDescr, portIndex)
	if err != nil {
		return model.ONURecord{}, fail(StageInventory, "", err)
	}
	macOID, _ := ONUPortOID(OIDOnuMAC, portIndex)
	statusOID, _ := ONUPortOID(OIDOnuStatus, portIndex)

	results, err := a.snmpExecutor.BulkGetSNMP(ctx, []string{descOID, macOID, statusOID})
	if err != nil {
		return model.ONURecord{}, fail(StagePortBinding, "", err)
	}

	// Port binding and branch
	descValue, ok := common.GetSNMPResult(results, descOID)
	if !ok {
		return model.ONURecord{}, fail(StagePortBinding, "", fmt.Errorf("%s: %w", descOID, types.ErrNoSuchObject))
	}
	desc, ok := common.ParseStringSNMPValue(descValue)
	if !ok {
		return model.ONURecord{}, fail(StagePortBinding, "", fmt.Errorf("%w: unexpected value type %T", types.ErrMalformedPortBinding, descValue))
	}
	branch, onuNumber, err := SplitPortBinding(desc)
	if err != nil {
		return model.ONURecord{}, fail(StagePortBinding, "", err)
	}

	branchIndex, err := branches.resolve(branch)
	if err != nil {
		return model.ONURecord{}, fail(StageBranch, branch, err)
	}

	// MAC
	macValue, ok := common.GetSNMPResult(results, macOID)
	if !ok {
		return model.ONURecord{}, fail(StageMAC, branch, fmt.Errorf("%s: %w", macOID, types.ErrNoSuchObject))
	}
	macBytes, ok := common.ParseBytesSNMPValue(macValue)
	if !ok {
		return model.ONURecord{}, fail(StageMAC, branch, fmt.Errorf("%w: unexpected value type %T", types.ErrMalformedAddress, macValue))
	}
	mac, err := DecodeMAC(macBytes)
	if err != nil {
		return model.ONURecord{}, fail(StageMAC, branch, err)
	}

	// Status
	statusValue, ok := common.GetSNMPResult(results, statusOID)
	if !ok {
		return model.ONURecord{}, fail(StageStatus, branch, fmt.Errorf("%s: %w", statusOID, types.ErrNoSuchObject))
	}
	statusCode, ok := common.ParseIntSNMPValue(statusValue)
	if !ok {
		return model.ONURecord{}, fail(StageStatus, branch, fmt.Errorf("unexpected status value %v", statusValue))
	}

	rec := model.ONURecord{
		Branch:      branch,
		BranchIndex: branchIndex,
		ONUNumber:   onuNumber,
		PortIndex:   portIndex,
		MAC:         mac,
		Status:      LookupONUStatus(int(statusCode)),
		StatusCode:  int(statusCode),
	}

	var dereg *model.Deregistration
	if rec.Status == model.ONUStatusDeregistered {
		dereg, err = a.collectDereg(ctx, branch, branchIndex, mac)
		if err != nil {
			return model.ONURecord{}, err
		}
	}

	rec, err = model.NewONURecord(rec, dereg)
	if err != nil {
		return model.ONURecord{}, fail(StageStatus, branch, err)
	}
	return rec, nil
}

func (a *Adapter) collectDereg(ctx context.Context, branch string, branchIndex int, mac string) (*model.Deregistration, error) {
	reasonOID, err := ONUDeregOID(OIDOnuLastDeregReason, branchIndex, mac)
	if err != nil {
		return nil, fail(StageDeregReason, branch, err)
	}
	timeOID, err := ONUDeregOID(OIDOnuLastDeregTime, branchIndex, mac)
	if err != nil {
		return nil, fail(StageDeregTime, branch, err)
	}

	results, err := a.snmpExecutor.BulkGetSNMP(ctx, []string{reasonOID, timeOID})
	if err != nil {
		return nil, fail(StageDeregReason, branch, err)
	}

	reasonValue, ok := common.GetSNMPResult(results, reasonOID)
	if !ok {
		return nil, fail(StageDeregReason, branch, fmt.Errorf("%s: %w", reasonOID, types.ErrNoSuchObject))
	}
	reasonCode, ok := common.ParseIntSNMPValue(reasonValue)
	if !ok {
		return nil, fail(StageDeregReason, branch, fmt.Errorf("unexpected reason value %v", reasonValue))
	}
	reason, known := LookupDeregReason(int(reasonCode))
	if !known {
		a.logger.Debug().Str("mac", mac).Int64("code", reasonCode).Msg("Unmapped deregistration reason")
	}

	timeValue, ok := common.GetSNMPResult(results, timeOID)
	if !ok {
		return nil, fail(StageDeregTime, branch, fmt.Errorf("%s: %w", timeOID, types.ErrNoSuchObject))
	}
	raw, ok := common.ParseBytesSNMPValue(timeValue)
	if !ok {
		return nil, fail(StageDeregTime, branch, fmt.Errorf("%w: unexpected value type %T", types.ErrTruncatedTimestamp, timeValue))
	}
	at, err := DecodeDeregTime(raw)
	if err != nil {
		return nil, fail(StageDeregTime, branch, err)
	}

	return &model.Deregistration{
		Reason:     reason,
		ReasonCode: int(reasonCode),
		Time:       at,
	}, nil
}

// onuPortIndex extracts the ONU ifIndex carried as the value of an
// inventory varbind. Agents report it as Integer or as a decimal string.
func onuPortIndex(v types.SNMPVariable) (string, bool) {
	switch val := v.Value.(type) {
	case []byte, string:
		s, _ := common.ParseStringSNMPValue(val)
		s = common.NormalizeOID(s)
		if !isNumericOID(s) {
			return "", false
		}
		return s, true
	default:
		n, ok := common.ParseIntSNMPValue(val)
		if !ok || n < 0 {
			return "", false
		}
		return fmt.Sprintf("%d", n), true
	}
}
