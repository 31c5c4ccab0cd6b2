package matching

// SwipeRequest is the payload for recording a swipe.
type SwipeRequest struct {
	TargetUserID int64     `json:"target_user_id" validate:"required"`
	SwipeType    SwipeType `json:"swipe_type" validate:"required"`
}

// SwipeResult reports the outcome of a swipe. A repeat swipe is not an
// error: Recorded is false and the message says so.
type SwipeResult struct {
	Recorded bool         `json:"recorded"`
	IsMatch  bool         `json:"is_match"`
	Message  string       `json:"message"`
	Action   *SwipeAction `json:"action,omitempty"`
}

// DiscoverProfile is one candidate on the discover feed, annotated with
// the deterministic match score.
type DiscoverProfile struct {
	UserID          int64    `json:"user_id"`
	Username        string   `json:"username"`
	DisplayName     *string  `json:"display_name,omitempty"`
	Bio             *string  `json:"bio,omitempty"`
	AvatarURL       *string  `json:"avatar_url,omitempty"`
	MatchScore      float64  `json:"match_score"`
	CommonInterests []string `json:"common_interests"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
}

// MatchProfile is one confirmed match with the connection it rides on.
type MatchProfile struct {
	ConnectionID int64           `json:"connection_id"`
	Profile      DiscoverProfile `json:"profile"`
	MatchedAt    string          `json:"matched_at"`
}

// DiscoverParams controls discover-feed paging.
type DiscoverParams struct {
	ConnectionType string
	Page           int
	Size           int
}
