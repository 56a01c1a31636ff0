package seed

// Company is one company in the JSON seed file.
type Company struct {
	Name    string   `json:"name"`
	OwnerID string   `json:"owner_id"`
	Members []Member `json:"members"`
	Quizzes []Quiz   `json:"quizzes"`
}

type Member struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type Quiz struct {
	Name               string     `json:"name"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	RetakeAfterMinutes int        `json:"retake_after_minutes"`
	Questions          []Question `json:"questions"`
}

type Question struct {
	Text           string   `json:"text"`
	Answers        []string `json:"answers"`
	CorrectAnswers []string `json:"correct_answers"`
}
