package storage

// SnapshotVersion пишется при экспорте, при импорте не проверяется.
const SnapshotVersion = 2

// Snapshot — полный экспорт состояния приложения, он же формат файла резервной копии.
type Snapshot struct {
	Version        int                  `json:"version,omitempty"`
	Operators      []string             `json:"operators"`
	Servers        []Server             `json:"servers"`
	HelpText       string               `json:"helpText"`
	CheckHistory   []CameraCheckRecord  `json:"checkHistory"`
	JornadaHistory []JornadaCheckRecord `json:"jornadaHistory"`
}

func (s *Snapshot) Normalize() {
	if s.Operators == nil {
		s.Operators = []string{}
	}
	if s.Servers == nil {
		s.Servers = []Server{}
	}
	for i := range s.Servers {
		if s.Servers[i].Cameras == nil {
			s.Servers[i].Cameras = []Camera{}
		}
	}
	if s.CheckHistory == nil {
		s.CheckHistory = []CameraCheckRecord{}
	}
	for i := range s.CheckHistory {
		s.CheckHistory[i].Normalize()
	}
	if s.JornadaHistory == nil {
		s.JornadaHistory = []JornadaCheckRecord{}
	}
	for i := range s.JornadaHistory {
		s.JornadaHistory[i].Normalize()
	}
}
