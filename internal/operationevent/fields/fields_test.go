package fields

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/sentinel"
)

func TestDefault(t *testing.T) {
	w := Default()

	paths, err := w.For(models.KindCourseEnrollment)
	require.NoError(t, err)
	assert.Equal(t, []string{"created", "id", "user_id", "course_id", "mode", "is_active"}, paths)

	assert.Len(t, w.Kinds(), 13)
	assert.True(t, w.Has(models.KindSite))
}

func TestFor_UnknownKind(t *testing.T) {
	_, err := Default().For("Widget")
	assert.ErrorIs(t, err, sentinel.ErrUnknownKind)
}

func TestFor_ReturnsCopy(t *testing.T) {
	w := Default()
	paths, err := w.For(models.KindSite)
	require.NoError(t, err)
	paths[0] = "mutated"

	again, err := w.For(models.KindSite)
	require.NoError(t, err)
	assert.Equal(t, "id", again[0])
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		w, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default().Kinds(), w.Kinds())
	})

	t.Run("overrides replace and add kinds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fields.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"CourseEnrollment: [id, mode]\nCertificate:\n  - id\n  - user_id\n"), 0o600))

		w, err := Load(path)
		require.NoError(t, err)

		enrollment, err := w.For(models.KindCourseEnrollment)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "mode"}, enrollment)

		cert, err := w.For("Certificate")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "user_id"}, cert)

		site, err := w.For(models.KindSite)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name", "domain"}, site)
	})

	t.Run("empty field list is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fields.yaml")
		require.NoError(t, os.WriteFile(path, []byte("Site: []\n"), 0o600))

		_, err := Load(path)
		assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
