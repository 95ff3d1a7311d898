package x

import "time"

// ReferencedTweet links a tweet to the post it replies to, quotes, or reposts.
type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// TweetMetrics mirrors the public_metrics object on a tweet.
type TweetMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

// Tweet is one post as returned by the v2 API.
type Tweet struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	AuthorID         string            `json:"author_id"`
	CreatedAt        string            `json:"created_at"`
	ConversationID   string            `json:"conversation_id,omitempty"`
	ReferencedTweets []ReferencedTweet `json:"referenced_tweets,omitempty"`
	PublicMetrics    *TweetMetrics     `json:"public_metrics,omitempty"`
}

// RepliedTo returns the parent post ID when this tweet is a reply.
func (t Tweet) RepliedTo() (string, bool) {
	for _, ref := range t.ReferencedTweets {
		if ref.Type == "replied_to" {
			return ref.ID, true
		}
	}
	return "", false
}

// IsRepost reports whether the tweet is a plain retweet.
func (t Tweet) IsRepost() bool {
	for _, ref := range t.ReferencedTweets {
		if ref.Type == "retweeted" {
			return true
		}
	}
	return false
}

// ParsedCreatedAt converts the tweet timestamp into time.Time when possible.
func (t Tweet) ParsedCreatedAt() time.Time {
	return parseTimestamp(t.CreatedAt)
}

// UserMetrics mirrors the public_metrics object on a user.
type UserMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
	ListedCount    int `json:"listed_count"`
}

// User is one account profile as returned by the v2 API.
type User struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Username      string       `json:"username"`
	CreatedAt     string       `json:"created_at"`
	Description   string       `json:"description"`
	Verified      bool         `json:"verified"`
	PublicMetrics *UserMetrics `json:"public_metrics,omitempty"`
}

// ParsedCreatedAt converts the profile timestamp into time.Time when possible.
func (u User) ParsedCreatedAt() time.Time {
	return parseTimestamp(u.CreatedAt)
}

func parseTimestamp(value string) time.Time {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Includes carries the expanded objects referenced by the main results.
type Includes struct {
	Tweets []Tweet `json:"tweets,omitempty"`
	Users  []User  `json:"users,omitempty"`
}

// SearchMeta is the paging envelope on a search response.
type SearchMeta struct {
	NewestID    string `json:"newest_id"`
	OldestID    string `json:"oldest_id"`
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token,omitempty"`
}

// SearchResponse is one recent-search page: trigger posts plus every parent
// post and author profile the expansions pulled in. One fetch of this batch
// serves all analyses in a pass.
type SearchResponse struct {
	Data     []Tweet    `json:"data"`
	Includes Includes   `json:"includes"`
	Meta     SearchMeta `json:"meta"`
}

// TweetByID resolves an expanded tweet from the includes.
func (r *SearchResponse) TweetByID(id string) *Tweet {
	for i := range r.Includes.Tweets {
		if r.Includes.Tweets[i].ID == id {
			return &r.Includes.Tweets[i]
		}
	}
	return nil
}

// UserByID resolves an expanded author profile from the includes.
func (r *SearchResponse) UserByID(id string) *User {
	for i := range r.Includes.Users {
		if r.Includes.Users[i].ID == id {
			return &r.Includes.Users[i]
		}
	}
	return nil
}

// AuthoredBy collects every tweet in the batch written by the given user,
// expanded parents included.
func (r *SearchResponse) AuthoredBy(userID string) []Tweet {
	var out []Tweet
	for _, t := range r.Data {
		if t.AuthorID == userID {
			out = append(out, t)
		}
	}
	for _, t := range r.Includes.Tweets {
		if t.AuthorID == userID {
			out = append(out, t)
		}
	}
	return out
}
