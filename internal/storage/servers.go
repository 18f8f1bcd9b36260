package storage

// Server — DVR/NVR, владеет списком камер.
type Server struct {
	ID      string   `json:"id"`
	IP      string   `json:"ip"`
	Cameras []Camera `json:"cameras"`
}

type Camera struct {
	ID       string `json:"id"`
	City     string `json:"city"`
	Section  string `json:"section"`
	Number   string `json:"number"`
	Location string `json:"location"`
	IP       string `json:"ip"`
}

func (s Server) Clone() Server {
	out := s
	out.Cameras = append([]Camera{}, s.Cameras...)
	return out
}

func CloneServers(in []Server) []Server {
	out := make([]Server, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
