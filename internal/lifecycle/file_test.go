package lifecycle

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
	"evsys/event-api/internal/permission"
)

// memStorage keeps objects in a map and can be told to fail, so every
// storage interaction of the file lifecycle is observable.
type memStorage struct {
	objects    map[string][]byte
	failStore  bool
	failDelete bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Store(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	if m.failStore {
		return "", errors.New("store failed")
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	url := "mem://" + key
	m.objects[url] = b

	return url, nil
}

func (m *memStorage) Delete(_ context.Context, url string) error {
	if m.failDelete {
		return errors.New("delete failed")
	}

	delete(m.objects, url)
	return nil
}

func (m *memStorage) Rename(_ context.Context, url, newName string) (string, error) {
	b, ok := m.objects[url]
	if !ok {
		return "", errors.New("no such object")
	}

	newURL := path.Join(path.Dir(url), newName)
	delete(m.objects, url)
	m.objects[newURL] = b

	return newURL, nil
}

func (m *memStorage) Provider() model.StorageProvider {
	return model.StorageProviderLocal
}

type fileFixture struct {
	files *Files
	db    *gorm.DB
	store *memStorage
	esID  string
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()

	_, db := testEventSystems(t)

	perms := permission.NewRegistry(db)
	store := newMemStorage()
	files := NewFiles(db, perms, store)

	events := NewEventSystems(db, perms)
	es, err := events.Create("owner", "Logs")
	require.NoError(t, err)

	return &fileFixture{files: files, db: db, store: store, esID: es.ID}
}

func (f *fileFixture) grant(t *testing.T, userID string, role model.Role) {
	t.Helper()

	require.NoError(t, f.db.Create(&model.UserSystemPermission{
		UserID:        userID,
		EventSystemID: f.esID,
		Role:          role,
	}).Error)
}

func (f *fileFixture) upload(t *testing.T, userID, name string) *model.FileReference {
	t.Helper()

	ref, err := f.files.Upload(context.Background(), userID, UploadInput{
		EventSystemID: f.esID,
		FileName:      name,
		Body:          strings.NewReader("payload"),
		Size:          7,
		ContentType:   "text/plain",
	})
	require.NoError(t, err)

	return ref
}

func TestUpload(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "report.csv")
	assert.Equal(t, "report.csv", ref.FileName)
	assert.Equal(t, model.UploadStatusComplete, ref.UploadStatus)
	assert.Equal(t, model.FileTypeEvent, ref.FileType)
	assert.Contains(t, f.store.objects, ref.URL)
}

func TestUploadNameConflict(t *testing.T) {
	f := newFileFixture(t)

	f.upload(t, "owner", "report.csv")

	_, err := f.files.Upload(context.Background(), "owner", UploadInput{
		EventSystemID: f.esID,
		FileName:      "report.csv",
		Body:          strings.NewReader("other"),
	})
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestUploadSameNameOtherSystem(t *testing.T) {
	f := newFileFixture(t)

	f.upload(t, "owner", "report.csv")

	events := NewEventSystems(f.db, permission.NewRegistry(f.db))
	other, err := events.Create("owner", "Other")
	require.NoError(t, err)

	_, err = f.files.Upload(context.Background(), "owner", UploadInput{
		EventSystemID: other.ID,
		FileName:      "report.csv",
		Body:          strings.NewReader("other"),
	})
	assert.NoError(t, err)
}

func TestUploadPermissions(t *testing.T) {
	f := newFileFixture(t)

	f.grant(t, "viewer", model.RoleViewer)
	f.grant(t, "editor", model.RoleEditor)

	_, err := f.files.Upload(context.Background(), "viewer", UploadInput{
		EventSystemID: f.esID,
		FileName:      "a.txt",
		Body:          strings.NewReader("x"),
	})
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))

	f.upload(t, "editor", "a.txt")
}

func TestUploadStorageFailureAborts(t *testing.T) {
	f := newFileFixture(t)
	f.store.failStore = true

	_, err := f.files.Upload(context.Background(), "owner", UploadInput{
		EventSystemID: f.esID,
		FileName:      "a.txt",
		Body:          strings.NewReader("x"),
	})
	assert.True(t, apperr.Is(err, apperr.Unexpected))

	// No record may exist for bytes that were never stored
	var count int64
	require.NoError(t, f.db.Model(model.FileReference{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRenameFile(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "old.txt")

	renamed, err := f.files.Rename(context.Background(), "owner", f.esID, ref.ID, "new.txt")
	require.NoError(t, err)
	assert.Equal(t, "new.txt", renamed.FileName)
	assert.Contains(t, f.store.objects, renamed.URL)
	assert.NotContains(t, f.store.objects, ref.URL)
}

func TestRenameFileNoop(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "same.txt")

	_, err := f.files.Rename(context.Background(), "owner", f.esID, ref.ID, "same.txt")
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestRenameFileCollision(t *testing.T) {
	f := newFileFixture(t)

	f.upload(t, "owner", "taken.txt")
	ref := f.upload(t, "owner", "free.txt")

	_, err := f.files.Rename(context.Background(), "owner", f.esID, ref.ID, "taken.txt")
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestSetSelected(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "a.txt")

	selected, err := f.files.SetSelected("owner", f.esID, ref.ID, true)
	require.NoError(t, err)
	assert.True(t, selected.IsSelected)

	// Selecting twice is an invalid transition
	_, err = f.files.SetSelected("owner", f.esID, ref.ID, true)
	assert.True(t, apperr.Is(err, apperr.InvalidState))

	_, err = f.files.SetSelected("owner", f.esID, ref.ID, false)
	require.NoError(t, err)

	_, err = f.files.SetSelected("owner", f.esID, ref.ID, false)
	assert.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestSetSelectedPermissions(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "a.txt")

	f.grant(t, "editor", model.RoleEditor)

	_, err := f.files.SetSelected("editor", f.esID, ref.ID, true)
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))
}

func TestDeleteFile(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "a.txt")

	require.NoError(t, f.files.Delete(context.Background(), "owner", f.esID, ref.ID))
	assert.NotContains(t, f.store.objects, ref.URL)

	_, err := f.files.Get("owner", f.esID, ref.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestDeleteFileStorageFailureIsNotFatal(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "a.txt")
	f.store.failDelete = true

	// Record removal wins even when the stored object can't be reached
	require.NoError(t, f.files.Delete(context.Background(), "owner", f.esID, ref.ID))

	var count int64
	require.NoError(t, f.db.Model(model.FileReference{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDeleteFilePermissions(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "a.txt")

	f.grant(t, "editor", model.RoleEditor)

	err := f.files.Delete(context.Background(), "editor", f.esID, ref.ID)
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))

	err = f.files.Delete(context.Background(), "stranger", f.esID, ref.ID)
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))
}

func TestFetchWrongSystem(t *testing.T) {
	f := newFileFixture(t)

	ref := f.upload(t, "owner", "a.txt")

	events := NewEventSystems(f.db, permission.NewRegistry(f.db))
	other, err := events.Create("owner", "Other")
	require.NoError(t, err)

	_, err = f.files.Get("owner", other.ID, ref.ID)
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestListFiles(t *testing.T) {
	f := newFileFixture(t)

	f.upload(t, "owner", "a.txt")
	f.upload(t, "owner", "b.txt")

	f.grant(t, "viewer", model.RoleViewer)

	refs, err := f.files.List("viewer", f.esID)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	_, err = f.files.List("stranger", f.esID)
	assert.True(t, apperr.Is(err, apperr.PermissionDenied))
}
