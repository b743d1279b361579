package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageKey(t *testing.T) {
	recipeID := uuid.New()
	jpeg := []byte("\xff\xd8\xff\xe0rest-of-jpeg")

	key, contentType, err := imageKey(recipeID, jpeg, "")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)
	assert.True(t, strings.HasPrefix(key, "recipes/"+recipeID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	_, _, err = imageKey(recipeID, nil, "image/png")
	assert.Error(t, err)

	_, _, err = imageKey(recipeID, make([]byte, maxImageBytes+1), "image/png")
	assert.Error(t, err)

	key, contentType, err = imageKey(recipeID, []byte("GIF89a\x01\x00"), "")
	require.NoError(t, err)
	assert.Equal(t, "image/gif", contentType)
	assert.True(t, strings.HasSuffix(key, ".gif"))

	_, _, err = imageKey(recipeID, []byte("BM\x00\x00"), "image/bmp")
	assert.Error(t, err)
}

func TestNewS3ImageStoreDefaultsTTL(t *testing.T) {
	store := NewS3ImageStore(nil, 0)
	assert.Equal(t, 15*60, int(store.urlTTL.Seconds()))
}
