package checks

import (
	"github.com/aristanetworks/anta/pkg/catalog"
)

func init() {
	for _, reg := range []catalog.Registration{
		{Group: "software", Name: "VerifySoftwareVersion", Categories: []string{"software"}, Factory: newVerifySoftwareVersion},
		{Group: "software", Name: "VerifyUptime", Categories: []string{"software"}, Factory: newVerifyUptime},
		{Group: "bgp", Name: "VerifyBGPPeersHealth", Categories: []string{"bgp"}, Factory: newVerifyBGPPeersHealth},
		{Group: "interfaces", Name: "VerifyInterfacesStatus", Categories: []string{"interfaces"}, Factory: newVerifyInterfacesStatus},
		{Group: "system", Name: "VerifyNTP", Categories: []string{"system"}, Factory: newVerifyNTP},
		{Group: "hardware", Name: "VerifyTemperature", Categories: []string{"hardware"}, Factory: newVerifyTemperature},
		{Group: "hardware", Name: "VerifyPowerSupplies", Categories: []string{"hardware"}, Factory: newVerifyPowerSupplies},
		{Group: "custom", Name: "VerifyCommandJSON", Categories: []string{"custom"}, Factory: newVerifyCommandJSON},
	} {
		catalog.Default.Register(reg)
	}
}
