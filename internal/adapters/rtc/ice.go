package rtc

import (
	"github.com/pion/webrtc/v4"
)

const DefaultSTUN = "stun:stun.l.google.com:19302"

// ICEConfig builds the configuration handed to browsers before they open a peer connection.
func ICEConfig(urls []string) webrtc.Configuration {
	if len(urls) == 0 {
		urls = []string{DefaultSTUN}
	}
	servers := make([]webrtc.ICEServer, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		servers = append(servers, webrtc.ICEServer{URLs: []string{u}})
	}
	if len(servers) == 0 {
		servers = append(servers, webrtc.ICEServer{URLs: []string{DefaultSTUN}})
	}
	return webrtc.Configuration{ICEServers: servers}
}
