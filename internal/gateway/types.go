package gateway

// PersonalInfo is the turn-two submission: the extracted name plus the
// raw education answer.
type PersonalInfo struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Education string `json:"education"`
}

// DocLink is a titled documentation URL.
type DocLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Improvement explains a question the user answered "no" to.
type Improvement struct {
	Question    string `json:"question"`
	Explanation string `json:"explanation"`
}

// Recommendations is the assessment result card payload.
type Recommendations struct {
	Level            string        `json:"level"`
	Domain           string        `json:"domain"`
	Score            string        `json:"score"`
	Percentage       string        `json:"percentage"`
	LevelDescription string        `json:"level_description"`
	Explanation      string        `json:"explanation"`
	AreasToImprove   []Improvement `json:"areas_to_improve"`
	Topics           []string      `json:"topics"`
	Projects         []string      `json:"projects"`
}

// AnswerResponse comes back from every assessment answer. Completed
// flips exactly once, carrying the recommendations payload.
type AnswerResponse struct {
	Message         string           `json:"message"`
	Question        string           `json:"question"`
	Completed       bool             `json:"completed"`
	Recommendations *Recommendations `json:"recommendations"`
}

// FeedbackResponse acknowledges feedback, optionally with doc links.
type FeedbackResponse struct {
	Message string    `json:"message"`
	Docs    []DocLink `json:"docs"`
}

// ChatResponse is a free-form post-assessment reply. SwitchDomain opens
// a domain-switch offer; GenerateRoadmap confirms one.
type ChatResponse struct {
	Message         string    `json:"message"`
	Reply           string    `json:"reply"`
	Docs            []DocLink `json:"docs"`
	SwitchDomain    string    `json:"switch_domain"`
	GenerateRoadmap string    `json:"generate_roadmap"`
}

// Text returns whichever reply field the server populated.
func (r ChatResponse) Text() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Reply
}

// RoadmapStep is one stage of a detailed roadmap.
type RoadmapStep struct {
	Step      int       `json:"step"`
	Title     string    `json:"title"`
	Duration  string    `json:"duration"`
	Topics    []string  `json:"topics"`
	Resources []DocLink `json:"resources"`
	Projects  []string  `json:"projects"`
}

// DetailedRoadmap is the full learning plan for a domain.
type DetailedRoadmap struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Prerequisites string        `json:"prerequisites"`
	Duration      string        `json:"duration"`
	Steps         []RoadmapStep `json:"steps"`
	CareerPaths   []string      `json:"career_paths"`
	Tips          []string      `json:"tips"`
}

// RoadmapResponse pairs a lead-in message with the roadmap payload.
type RoadmapResponse struct {
	Message string           `json:"message"`
	Roadmap *DetailedRoadmap `json:"roadmap"`
}
