package types

// Rating is the learner's assessment of recall quality on a 1..4 scale.
type Rating int

const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// Successful reports whether the rating counts as a correct recall.
func (r Rating) Successful() bool {
	return r >= RatingGood
}
