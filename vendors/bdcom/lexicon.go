package bdcom

import "github.com/nanoncore/nano-outage/model"

// onuStatusCodes maps the ONU status integer of the per-ONU status table
var onuStatusCodes = map[int]model.ONUStatus{
	0: model.ONUStatusAuthenticated,
	2: model.ONUStatusDeregistered,
	4: model.ONUStatusLost,
	5: model.ONUStatusAutoConfigured,
}

// deregReasonCodes maps the last-deregistration reason integer
var deregReasonCodes = map[int]model.DeregReason{
	0: model.ReasonUnknown,
	2: model.ReasonNormal,
	3: model.ReasonMPCPDown,
	4: model.ReasonOAMDown,
	5: model.ReasonFirmwareDownload,
	6: model.ReasonIllegalMAC,
	7: model.ReasonAdminDown,
	8: model.ReasonWireDown,
	9: model.ReasonPowerOff,
}

// LookupONUStatus maps a status code. Unmapped codes are ONUStatusUnknown.
func LookupONUStatus(code int) model.ONUStatus {
	if s, ok := onuStatusCodes[code]; ok {
		return s
	}
	return model.ONUStatusUnknown
}

// LookupDeregReason maps a reason code. Unlike LookupONUStatus there is no
// catch-all: code 0 is the device's own "unknown", so an unmapped code yields
// model.ReasonAbsent and false.
func LookupDeregReason(code int) (model.DeregReason, bool) {
	r, ok := deregReasonCodes[code]
	if !ok {
		return model.ReasonAbsent, false
	}
	return r, true
}
