package compute

// Instance is one record as reported by `yc compute instance list`.
// The status string is provider-defined and treated as opaque.
type Instance struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Status            string             `json:"status"`
	ZoneID            string             `json:"zone_id"`
	NetworkInterfaces []NetworkInterface `json:"network_interfaces"`
}

// NetworkInterface mirrors the relevant part of the yc list output shape.
type NetworkInterface struct {
	PrimaryV4Address *PrimaryV4Address `json:"primary_v4_address"`
}

type PrimaryV4Address struct {
	Address     string       `json:"address"`
	OneToOneNat *OneToOneNat `json:"one_to_one_nat"`
}

type OneToOneNat struct {
	Address string `json:"address"`
}

// PublicIP returns the NAT address on the first interface. It never fails:
// instances without interfaces or without a NAT mapping yield "".
func (i *Instance) PublicIP() string {
	if i == nil || len(i.NetworkInterfaces) == 0 {
		return ""
	}
	addr := i.NetworkInterfaces[0].PrimaryV4Address
	if addr == nil || addr.OneToOneNat == nil {
		return ""
	}
	return addr.OneToOneNat.Address
}
