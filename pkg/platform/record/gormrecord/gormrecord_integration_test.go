//go:build integration

package gormrecord_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"opevent/pkg/platform/flatten"
	"opevent/pkg/platform/record/gormrecord"
	"opevent/pkg/testutil/containers"
)

type Profile struct {
	ID       uint
	Username string
}

type Submission struct {
	ID        uint
	ProfileID uint
	Profile   *Profile
	Answer    string
}

func TestRecord_LazyAssociationLoading(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	db, err := gorm.Open(postgres.Open(pg.DSN), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Profile{}, &Submission{}))

	profile := Profile{Username: "ada"}
	require.NoError(t, db.Create(&profile).Error)
	sub := Submission{ProfileID: profile.ID, Answer: "42"}
	require.NoError(t, db.Create(&sub).Error)

	var loaded Submission
	require.NoError(t, db.First(&loaded, sub.ID).Error)
	require.Nil(t, loaded.Profile)

	r, err := gormrecord.New(ctx, db, &loaded)
	require.NoError(t, err)

	out := flatten.Flatten(r, []string{"id", "profile__username", "profile"})
	assert.Equal(t, map[string]any{
		"id":         sub.ID,
		"profile":    map[string]any{"username": "ada"},
		"profile_id": profile.ID,
	}, out.ToMap())
}
