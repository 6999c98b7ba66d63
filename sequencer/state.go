package sequencer

// VoiceState is where a voice is in its life
type VoiceState string

const (
	StateLoading  VoiceState = "loading"
	StateWaiting  VoiceState = "waiting" // armed, transport not started
	StateRunning  VoiceState = "running"
	StateStopped  VoiceState = "stopped"
	StateFinished VoiceState = "finished"
	StateFailed   VoiceState = "failed"
	StateDisabled VoiceState = "disabled"
)

// VoiceStatus is a point-in-time view of one voice
type VoiceStatus struct {
	Name     string     `json:"name"`
	State    VoiceState `json:"state"`
	Group    bool       `json:"startGroup"`
	Channel  int        `json:"channel,omitempty"`
	Fires    int        `json:"fires"`
	LastFire float64    `json:"lastFire"`
	NextFire float64    `json:"nextFire,omitempty"`
	Notes    int        `json:"notes"`
	LastNote string     `json:"lastNote,omitempty"`
	LastAt   float64    `json:"lastNoteAt,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// TransportStatus is a point-in-time view of the shared clock
type TransportStatus struct {
	Started  bool    `json:"started"`
	Position float64 `json:"position"`
	Now      float64 `json:"now"`
	Pending  int     `json:"pending"`
	Waiting  int     `json:"startGroupWaiting"`
	Seed     int64   `json:"seed"`
}
