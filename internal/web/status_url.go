package web

import "net"

// StatusURL is the address a phone on the same network should open to reach
// the status API. A listen address without a host resolves to the first
// non-loopback IPv4 address, falling back to localhost.
func StatusURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = primaryIPv4()
	}
	if port == "80" {
		return "http://" + host + "/api/v1/status"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/v1/status"
}

func primaryIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() || ipnet.IP.IsLinkLocalUnicast() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
