package x

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchFixture = `{
	"data": [
		{
			"id": "t1",
			"text": "riddle me this",
			"author_id": "u2",
			"created_at": "2026-08-01T10:00:00.000Z",
			"referenced_tweets": [{"type": "replied_to", "id": "p1"}]
		}
	],
	"includes": {
		"tweets": [
			{"id": "p1", "text": "parent", "author_id": "u1", "created_at": "2026-07-31T09:00:00.000Z"}
		],
		"users": [
			{
				"id": "u1",
				"name": "Target",
				"username": "target",
				"created_at": "2019-05-01T00:00:00.000Z",
				"description": "hello",
				"verified": true,
				"public_metrics": {"followers_count": 10, "following_count": 5, "tweet_count": 100}
			}
		]
	},
	"meta": {"newest_id": "t1", "oldest_id": "t1", "result_count": 1}
}`

func TestSearchRecent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, `"riddle me this" is:reply -is:retweet`, q.Get("query"))
		assert.Equal(t, "t0", q.Get("since_id"))
		assert.Contains(t, q.Get("expansions"), "referenced_tweets.id.author_id")
		assert.Contains(t, q.Get("user.fields"), "public_metrics")

		w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app-token", "user-token")
	resp, err := c.SearchRecent(context.Background(), `"riddle me this" is:reply -is:retweet`, "t0")
	require.NoError(t, err)

	require.Len(t, resp.Data, 1)
	parentID, ok := resp.Data[0].RepliedTo()
	require.True(t, ok)
	assert.Equal(t, "p1", parentID)

	parent := resp.TweetByID("p1")
	require.NotNil(t, parent)
	author := resp.UserByID(parent.AuthorID)
	require.NotNil(t, author)
	assert.Equal(t, "target", author.Username)
	assert.True(t, author.Verified)
	require.NotNil(t, author.PublicMetrics)
	assert.Equal(t, 10, author.PublicMetrics.FollowersCount)
	assert.False(t, author.ParsedCreatedAt().IsZero())

	assert.Equal(t, "t1", resp.Meta.NewestID)
}

func TestSearchRecentOmitsEmptySinceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["since_id"]
		assert.False(t, present)
		w.Write([]byte(`{"meta": {"result_count": 0}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app-token", "")
	resp, err := c.SearchRecent(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}

func TestPostReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		var payload struct {
			Text  string `json:"text"`
			Reply struct {
				InReplyToTweetID string `json:"in_reply_to_tweet_id"`
			} `json:"reply"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "report text", payload.Text)
		assert.Equal(t, "t1", payload.Reply.InReplyToTweetID)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data": {"id": "reply-9"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app-token", "user-token")
	id, err := c.PostReply(context.Background(), "report text", "t1")
	require.NoError(t, err)
	assert.Equal(t, "reply-9", id)
}

func TestRateLimitedSurfacesSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app-token", "user-token")
	_, err := c.SearchRecent(context.Background(), "q", "")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = c.PostReply(context.Background(), "text", "t1")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestErrorStatusIncludesBodySnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"title": "Forbidden"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app-token", "user-token")
	_, err := c.SearchRecent(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "Forbidden")
}
