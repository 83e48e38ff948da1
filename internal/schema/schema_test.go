package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deon-gracias/rag/internal/domain"
)

func TestDecode_Session(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"id": 7, "name": "session-7", "created_at": "2024-01-01T00:00:00Z"}`, false},
		{"extra fields ignored", `{"id": 1, "name": "a", "created_at": "2024-01-01T00:00:00Z", "owner": "x"}`, false},
		{"null updated_at", `{"id": 1, "name": "a", "created_at": "2024-01-01T00:00:00", "updated_at": null}`, false},
		{"updated_at set", `{"id": 1, "name": "a", "created_at": "2024-01-01T00:00:00", "updated_at": "2024-01-02T00:00:00"}`, false},
		{"updated_at wrong kind", `{"id": 1, "name": "a", "created_at": "2024-01-01T00:00:00", "updated_at": 5}`, true},
		{"naive timestamp", `{"id": 1, "name": "a", "created_at": "2024-05-02T10:11:12.123456"}`, false},
		{"missing name", `{"id": 1, "created_at": "2024-01-01T00:00:00Z"}`, true},
		{"id as string", `{"id": "1", "name": "a", "created_at": "2024-01-01T00:00:00Z"}`, true},
		{"fractional id", `{"id": 1.5, "name": "a", "created_at": "2024-01-01T00:00:00Z"}`, true},
		{"zero id", `{"id": 0, "name": "a", "created_at": "2024-01-01T00:00:00Z"}`, true},
		{"empty name", `{"id": 1, "name": "", "created_at": "2024-01-01T00:00:00Z"}`, true},
		{"bad timestamp", `{"id": 1, "name": "a", "created_at": "yesterday"}`, true},
		{"not found body", `{"detail": "Session not found"}`, true},
		{"malformed", `{"id": 1,`, true},
		{"array instead of object", `[]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[Session]([]byte(tt.body), SessionShape)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "session", verr.Shape)
				assert.NotEmpty(t, verr.Problems)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecode_SessionToDomain(t *testing.T) {
	got, err := Decode[Session]([]byte(`{"id": 7, "name": "session-7", "created_at": "2024-01-01T00:00:00Z"}`), SessionShape)
	require.NoError(t, err)

	s := got.ToDomain()
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, "session-7", s.Name)
	assert.True(t, s.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.UpdatedAt.IsZero())
}

func TestDecode_Envelope(t *testing.T) {
	t.Run("with data", func(t *testing.T) {
		env, err := Decode[SessionEnvelope]([]byte(`{"ok": true, "data": {"id": 3, "name": "n", "created_at": "2024-01-01T00:00:00Z"}}`), SessionEnvelopeShape)
		require.NoError(t, err)
		res := env.ToDomain()
		assert.True(t, res.OK)
		require.NotNil(t, res.Session)
		assert.Equal(t, int64(3), res.Session.ID)
	})

	t.Run("without data", func(t *testing.T) {
		env, err := Decode[SessionEnvelope]([]byte(`{"ok": false}`), SessionEnvelopeShape)
		require.NoError(t, err)
		assert.False(t, env.OK)
		assert.Nil(t, env.Data)
	})

	t.Run("data with wrong shape", func(t *testing.T) {
		_, err := Decode[SessionEnvelope]([]byte(`{"ok": true, "data": {"id": 3}}`), SessionEnvelopeShape)
		assert.Error(t, err)
	})

	t.Run("missing ok", func(t *testing.T) {
		_, err := Decode[SessionEnvelope]([]byte(`{"data": {"id": 3, "name": "n", "created_at": "2024-01-01T00:00:00Z"}}`), SessionEnvelopeShape)
		assert.Error(t, err)
	})
}

func TestDecodeList_Sessions(t *testing.T) {
	t.Run("preserves order", func(t *testing.T) {
		list, err := DecodeList[Session]([]byte(`[
			{"id": 2, "name": "b", "created_at": "2024-01-02T00:00:00Z"},
			{"id": 1, "name": "a", "created_at": "2024-01-01T00:00:00Z"}
		]`), SessionListShape)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(2), list[0].ID)
		assert.Equal(t, int64(1), list[1].ID)
	})

	t.Run("empty", func(t *testing.T) {
		list, err := DecodeList[Session]([]byte(`[]`), SessionListShape)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})

	t.Run("one bad element fails the list", func(t *testing.T) {
		_, err := DecodeList[Session]([]byte(`[
			{"id": 1, "name": "a", "created_at": "2024-01-01T00:00:00Z"},
			{"id": -4, "name": "b", "created_at": "2024-01-01T00:00:00Z"}
		]`), SessionListShape)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Problems[0], "[1].id")
	})
}

func TestDecodeList_Messages(t *testing.T) {
	list, err := DecodeList[Message]([]byte(`[
		{"id": 1, "type": "human", "content": "hi", "created_at": "2024-01-01T00:00:00Z"},
		{"id": 2, "type": "ai", "content": "hello", "created_at": "2024-01-01T00:00:01Z"},
		{"id": 3, "type": "user", "content": "old", "created_at": "2024-01-01 00:00:02"}
	]`), MessageListShape)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domain.MessageAI, list[1].ToDomain().Type)
	assert.Equal(t, domain.MessageUser, list[2].ToDomain().Type)

	_, err = DecodeList[Message]([]byte(`[{"id": 1, "type": "robot", "content": "x", "created_at": "2024-01-01T00:00:00Z"}]`), MessageListShape)
	assert.Error(t, err)

	_, err = DecodeList[Message]([]byte(`[{"id": 1, "type": "ai", "created_at": "2024-01-01T00:00:00Z"}]`), MessageListShape)
	assert.Error(t, err, "content is required")
}

func TestDecode_ChatResponse(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		resp, err := Decode[ChatResponse]([]byte(`{"content": "answer", "type": "ai"}`), ChatResponseShape)
		require.NoError(t, err)
		d := resp.ToDomain()
		assert.Equal(t, "answer", d.Content)
		assert.Nil(t, d.Usage)
		assert.Nil(t, d.Response)
	})

	t.Run("with metadata", func(t *testing.T) {
		body := `{
			"content": "answer",
			"type": "ai",
			"usage_metadata": {"input_tokens": 10, "output_tokens": 5, "total_tokens": 15},
			"response_metadata": {
				"model": "llama3.2",
				"created_at": "2024-06-01T12:00:00.123456789Z",
				"message": {"role": "assistant", "content": ""},
				"total_duration": 2500000000,
				"load_duration": 1000000
			}
		}`
		resp, err := Decode[ChatResponse]([]byte(body), ChatResponseShape)
		require.NoError(t, err)

		d := resp.ToDomain()
		require.NotNil(t, d.Usage)
		assert.Equal(t, 15, d.Usage.TotalTokens)
		require.NotNil(t, d.Response)
		assert.Equal(t, "llama3.2", d.Response.Model)
		assert.Equal(t, "assistant", d.Response.Role)
		assert.Equal(t, 2500*time.Millisecond, d.Response.TotalDuration)
		assert.Equal(t, time.Millisecond, d.Response.LoadDuration)
		assert.Equal(t, 2024, d.Response.CreatedAt.Year())
	})

	tests := []struct {
		name string
		body string
	}{
		{"null usage", `{"content": "a", "type": "ai", "usage_metadata": null}`},
		{"null response metadata", `{"content": "a", "type": "ai", "response_metadata": null}`},
		{"partial usage", `{"content": "a", "type": "ai", "usage_metadata": {"input_tokens": 1}}`},
		{"negative tokens", `{"content": "a", "type": "ai", "usage_metadata": {"input_tokens": -1, "output_tokens": 0, "total_tokens": 0}}`},
		{"content as number", `{"content": 1, "type": "ai"}`},
		{"missing type", `{"content": "a"}`},
		{"duration as string", `{"content": "a", "type": "ai", "response_metadata": {"total_duration": "1s"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode[ChatResponse]([]byte(tt.body), ChatResponseShape)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestDecode_HealthAndOK(t *testing.T) {
	h, err := Decode[Health]([]byte(`{"response": "ok"}`), HealthShape)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Response)

	ok, err := Decode[OK]([]byte(`{"ok": true}`), OKShape)
	require.NoError(t, err)
	assert.True(t, ok.OK)

	_, err = Decode[OK]([]byte(`{"ok": "yes"}`), OKShape)
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T00:00:00Z", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T02:00:00+02:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01 00:00:00+00:00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:20:30.5", time.Date(2024, 1, 1, 10, 20, 30, 500000000, time.Local)},
		{"2024-01-01 10:20:30", time.Date(2024, 1, 1, 10, 20, 30, 0, time.Local)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseTimestamp("01/02/2024")
	assert.Error(t, err)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Shape: "session", Problems: []string{"name: required", "id: wrong type"}}
	assert.Equal(t, "invalid session payload: name: required; id: wrong type", err.Error())
	assert.Equal(t, "invalid ok payload", (&ValidationError{Shape: "ok"}).Error())
}
