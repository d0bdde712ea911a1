package p2p

import (
	"fmt"
	"net"
	"time"

	"github.com/huin/goupnp/dcps/internetgateway1"
	natpmp "github.com/jackpal/go-nat-pmp"
)

// NATInterface is the narrow port-mapping contract DiscoveryTable.Bind
// and SessionMultiplexer.Listen use, grounded on the teacher's p2p/nat
// package shape (nat.Interface: AddMapping/DeleteMapping/ExternalIP).
type NATInterface interface {
	String() string
	SupportsMapping() bool
	AddMapping(protocol string, extPort, intPort int, name string, lifetime time.Duration) (uint16, error)
	DeleteMapping(protocol string, extPort, intPort int) error
	ExternalIP() (net.IP, error)
}

// discoverGatewayIP returns a guess at the default gateway's IP so NAT-PMP
// has someone to talk to. NAT-PMP itself has no discovery step (it always
// talks to the default gateway), so this finds the local IPv4 address used
// for outbound traffic and assumes the gateway is the .1 host of its /24.
func discoverGatewayIP() (net.IP, error) {
	conn, err := net.Dial("udp4", "192.0.2.1:1") // TEST-NET-1, never dialed
	if err != nil {
		return nil, fmt.Errorf("p2p/nat: no route to determine local address: %w", err)
	}
	defer conn.Close()
	local := conn.LocalAddr().(*net.UDPAddr).IP.To4()
	if local == nil {
		return nil, fmt.Errorf("p2p/nat: no IPv4 local address")
	}
	gw := make(net.IP, 4)
	copy(gw, local)
	gw[3] = 1
	return gw, nil
}

// pmpNAT adapts jackpal/go-nat-pmp to NATInterface.
type pmpNAT struct {
	gateway net.IP
	client  *natpmp.Client
}

func newPMPNAT() (NATInterface, error) {
	gw, err := discoverGatewayIP()
	if err != nil {
		return nil, err
	}
	return &pmpNAT{gateway: gw, client: natpmp.NewClient(gw)}, nil
}

func (n *pmpNAT) String() string        { return fmt.Sprintf("NAT-PMP(%s)", n.gateway) }
func (n *pmpNAT) SupportsMapping() bool { return true }

func (n *pmpNAT) AddMapping(protocol string, extPort, intPort int, name string, lifetime time.Duration) (uint16, error) {
	res, err := n.client.AddPortMapping(protocol, intPort, extPort, int(lifetime/time.Second))
	if err != nil {
		return 0, err
	}
	return res.MappedExternalPort, nil
}

func (n *pmpNAT) DeleteMapping(protocol string, extPort, intPort int) error {
	_, err := n.client.AddPortMapping(protocol, intPort, 0, 0)
	return err
}

func (n *pmpNAT) ExternalIP() (net.IP, error) {
	resp, err := n.client.GetExternalAddress()
	if err != nil {
		return nil, err
	}
	ip := make(net.IP, 4)
	copy(ip, resp.ExternalIPAddress[:])
	return ip, nil
}

// newUPnPNAT adapts huin/goupnp's InternetGatewayDevice clients to
// NATInterface. Device discovery is SSDP-based and best-effort; failure
// to discover a device is reported to the caller, which treats it as
// "no UPnP gateway available" rather than a fatal startup error.
func newUPnPNAT() (NATInterface, error) {
	clients, _, err := internetgateway1.NewWANIPConnection1Clients()
	if err != nil {
		return nil, fmt.Errorf("p2p/nat: upnp discovery: %w", err)
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("p2p/nat: no UPnP internet gateway device found")
	}
	return &upnpService{client: clients[0]}, nil
}

type upnpService struct {
	client *internetgateway1.WANIPConnection1
}

func (u *upnpService) String() string {
	return fmt.Sprintf("UPnP(%s)", u.client.ServiceClient.Location)
}

func (u *upnpService) SupportsMapping() bool { return true }

func (u *upnpService) AddMapping(protocol string, extPort, intPort int, name string, lifetime time.Duration) (uint16, error) {
	ip, err := u.ExternalIP()
	if err != nil {
		return 0, err
	}
	if err := u.client.AddPortMapping("", uint16(extPort), protocol, uint16(intPort), ip.String(), true, name, uint32(lifetime/time.Second)); err != nil {
		return 0, err
	}
	return uint16(extPort), nil
}

func (u *upnpService) DeleteMapping(protocol string, extPort, intPort int) error {
	return u.client.DeletePortMapping("", uint16(extPort), protocol)
}

func (u *upnpService) ExternalIP() (net.IP, error) {
	s, err := u.client.GetExternalIPAddress()
	if err != nil {
		return nil, err
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("p2p/nat: upnp returned invalid IP %q", s)
	}
	return ip, nil
}
