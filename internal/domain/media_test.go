package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkPrimary(t *testing.T) {
	items := []MediaItem{
		{ID: "a", IsPrimary: true},
		{ID: "b"},
		{ID: "c", IsPrimary: true},
	}

	out := MarkPrimary(items, "b")
	assert.Equal(t, []bool{false, true, false}, []bool{out[0].IsPrimary, out[1].IsPrimary, out[2].IsPrimary})
	assert.True(t, items[0].IsPrimary, "input is not modified")
}

func TestRemoveMedia(t *testing.T) {
	items := []MediaItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out := RemoveMedia(items, "b")

	assert.Equal(t, []MediaItem{{ID: "a"}, {ID: "c"}}, out)
	assert.Equal(t, "b", items[1].ID, "input is not modified")
	assert.Equal(t, -1, FindMedia(out, "b"))
	assert.Equal(t, 1, FindMedia(out, "c"))
}

func TestMediaStats_Normalize(t *testing.T) {
	assert.Equal(t, 3, MediaStats{Total: 7, Max: 10, Remaining: 99}.Normalize().Remaining)
	assert.Equal(t, 0, MediaStats{Total: 12, Max: 10}.Normalize().Remaining)
}

func TestMediaTypeFor(t *testing.T) {
	mt, ok := MediaTypeFor("image/png")
	assert.True(t, ok)
	assert.Equal(t, MediaImage, mt)

	mt, ok = MediaTypeFor(" Video/MP4 ")
	assert.True(t, ok)
	assert.Equal(t, MediaVideo, mt)

	_, ok = MediaTypeFor("application/pdf")
	assert.False(t, ok)
}

func TestUserMessageAndRetry(t *testing.T) {
	netErr := &NetworkError{Op: "save shipping", Status: 503}
	schemaErr := &SchemaFetchError{CategoryID: "7", Err: netErr}
	persistErr := &PersistenceError{Op: "create variant", Field: "sku", Message: "SKU already exists"}

	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", netErr)))
	assert.True(t, IsRetryable(schemaErr))
	assert.False(t, IsRetryable(persistErr))
	assert.False(t, IsRetryable(FieldInvalid("name", "required")))

	assert.Equal(t, "SKU already exists", UserMessage(persistErr))
	assert.Equal(t, "The changes could not be saved. Please try again.", UserMessage(&PersistenceError{}))
	assert.Equal(t, "Attributes for this category could not be loaded. Try again.", UserMessage(schemaErr))
	assert.Equal(t, "The catalog service could not be reached. Try again.", UserMessage(netErr))
	assert.Equal(t, "cannot upload 5 files: only 2 media slots remaining", UserMessage(&UploadRejected{Requested: 5, Remaining: 2}))
	assert.Equal(t, "media section is locked until the base product is saved", UserMessage(&SectionLockedError{Section: SectionMedia}))
	assert.Equal(t, "This draft is no longer open.", UserMessage(ErrSessionNotFound))
	assert.Equal(t, "Something went wrong. Try again.", UserMessage(errors.New("boom")))
	assert.Empty(t, UserMessage(nil))
}
