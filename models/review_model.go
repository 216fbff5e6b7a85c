package models

type Review struct {
	ID         string  `json:"_id" bson:"_id"`
	SessionID  string  `json:"sessionId" bson:"sessionId"`
	Rating     float64 `json:"rating" bson:"rating"`
	ReviewText string  `json:"reviewText,omitempty" bson:"reviewText,omitempty"`
	UserName   string  `json:"userName,omitempty" bson:"userName,omitempty"`
	UserImage  string  `json:"userImage,omitempty" bson:"userImage,omitempty"`
	DateTime   string  `json:"dateTime,omitempty" bson:"dateTime,omitempty"`
}

type ReviewSummary struct {
	Reviews       []Review `json:"reviews"`
	AverageRating float64  `json:"averageRating"`
}
