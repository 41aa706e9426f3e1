package domain

// Rating is a satisfaction score forwarded once to the feedback channel.
type Rating struct {
	RaterID  string
	Score    int
	MaxScore int
	Feedback string
}
