package checks

import (
	"fmt"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/util"
)

// VerifyBGPPeersHealth checks that every configured peer session is
// Established, one atomic sub-result per peer.
type VerifyBGPPeersHealth struct {
	model.TestMeta
	VRF   string
	Peers []string
}

var bgpNeighborTemplate = model.NewTemplate("show ip bgp neighbors {peer} vrf {vrf}")

func newVerifyBGPPeersHealth(input map[string]interface{}) (model.Test, error) {
	var in struct {
		VRF     string        `yaml:"vrf"`
		Peers   []string      `yaml:"peers"`
		Filters model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	v := &util.ValidationBuilder{}
	v.Add(len(in.Peers) > 0, "VerifyBGPPeersHealth: peers is required")
	if err := v.Build(); err != nil {
		return nil, err
	}
	if in.VRF == "" {
		in.VRF = "default"
	}

	// One rendered command per peer.
	cmds := make([]*model.Command, 0, len(in.Peers))
	for _, peer := range in.Peers {
		cmd, err := bgpNeighborTemplate.Render(map[string]interface{}{
			"peer": peer,
			"vrf":  in.VRF,
		})
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	if err := model.RequireCommands("VerifyBGPPeersHealth", cmds); err != nil {
		return nil, err
	}

	return &VerifyBGPPeersHealth{
		TestMeta: model.TestMeta{
			TestName:        "VerifyBGPPeersHealth",
			TestDescription: "Verifies the health of BGP peer sessions",
			TestCategories:  []string{"bgp"},
			Cmds:            cmds,
			Filter:          in.Filters,
		},
		VRF:   in.VRF,
		Peers: in.Peers,
	}, nil
}

func (t *VerifyBGPPeersHealth) Assess(r *model.TestResult) {
	for i, peer := range t.Peers {
		sub := r.Atomic(fmt.Sprintf("peer %s vrf %s", peer, t.VRF))

		out, err := t.Cmds[i].JSONOutput()
		if err != nil {
			sub.Error(err.Error())
			continue
		}
		state := peerState(out, t.VRF, peer)
		switch state {
		case "Established":
			sub.Success()
		case "":
			sub.Failure(fmt.Sprintf("peer %s not found in vrf %s", peer, t.VRF))
		default:
			sub.Failure(fmt.Sprintf("peer %s state is %s, expected Established", peer, state))
		}
	}
}

// peerState digs the session state of a peer out of the vrfs/peerList
// structure of `show ip bgp neighbors`.
func peerState(out map[string]interface{}, vrf, peer string) string {
	vrfs, _ := out["vrfs"].(map[string]interface{})
	vrfData, _ := vrfs[vrf].(map[string]interface{})
	peerList, _ := vrfData["peerList"].([]interface{})
	for _, raw := range peerList {
		p, _ := raw.(map[string]interface{})
		if addr, _ := p["peerAddress"].(string); addr == peer {
			state, _ := p["state"].(string)
			return state
		}
	}
	return ""
}
