package lifecycle

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/model"
	"evsys/event-api/internal/permission"
	"evsys/event-api/internal/storage"
)

type Files struct {
	db    *gorm.DB
	perms *permission.Registry
	store storage.Storage
}

func NewFiles(db *gorm.DB, perms *permission.Registry, store storage.Storage) *Files {
	return &Files{db: db, perms: perms, store: store}
}

type UploadInput struct {
	EventSystemID string
	FileName      string
	Body          io.Reader
	Size          int64
	ContentType   string
	FileType      model.FileType
}

// Upload stores the bytes and creates the file record. The storage write is
// the requested action here, so its failure aborts the whole operation and
// no record is created.
func (s *Files) Upload(ctx context.Context, userID string, in UploadInput) (*model.FileReference, error) {
	if strings.TrimSpace(in.FileName) == "" {
		return nil, apperr.New(apperr.Validation, "File name can't be empty")
	}

	if in.FileType == "" {
		in.FileType = model.FileTypeEvent
	}

	if _, err := s.perms.Check(userID, in.EventSystemID, permission.ActionUpload); err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(in.EventSystemID, in.FileName); err != nil {
		return nil, err
	}

	key := path.Join("event_system", in.EventSystemID, in.FileName)

	url, err := s.store.Store(ctx, key, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to store file", err)
	}

	ref := model.FileReference{
		ID:              uuid.NewString(),
		EventSystemID:   in.EventSystemID,
		FileName:        in.FileName,
		URL:             url,
		StorageProvider: s.store.Provider(),
		Size:            in.Size,
		UploadStatus:    model.UploadStatusComplete,
		FileType:        in.FileType,
	}

	if err := s.db.Create(&ref).Error; err != nil {
		// The record never existed, so drop the orphaned object
		if derr := s.store.Delete(ctx, url); derr != nil {
			zap.L().Error("Failed to clean up stored object after db failure",
				zap.String("url", url),
				zap.Error(derr))
		}

		return nil, apperr.Wrap(apperr.Unexpected, "Failed to create file record", err)
	}

	return &ref, nil
}

// Rename changes the file name, re-checking uniqueness, and moves the
// stored object so its URL stays truthful.
func (s *Files) Rename(ctx context.Context, userID, eventSystemID, fileID, newName string) (*model.FileReference, error) {
	if strings.TrimSpace(newName) == "" {
		return nil, apperr.New(apperr.Validation, "File name can't be empty")
	}

	if _, err := s.perms.Check(userID, eventSystemID, permission.ActionRename); err != nil {
		return nil, err
	}

	ref, err := s.fetch(eventSystemID, fileID)
	if err != nil {
		return nil, err
	}

	if ref.FileName == newName {
		return nil, apperr.New(apperr.InvalidState, "The new file name is the same as the existing one")
	}

	if err := s.ensureNameFree(eventSystemID, newName); err != nil {
		return nil, err
	}

	url, err := s.store.Rename(ctx, ref.URL, newName)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to rename stored object", err)
	}

	ref.FileName = newName
	ref.URL = url

	if err := s.db.Save(ref).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to update file record", err)
	}

	return ref, nil
}

// SetSelected toggles the selection flag. Setting it to the value it
// already has is rejected; this is a toggle, not an idempotent set.
func (s *Files) SetSelected(userID, eventSystemID, fileID string, selected bool) (*model.FileReference, error) {
	if _, err := s.perms.Check(userID, eventSystemID, permission.ActionSelect); err != nil {
		return nil, err
	}

	ref, err := s.fetch(eventSystemID, fileID)
	if err != nil {
		return nil, err
	}

	if ref.IsSelected == selected {
		if selected {
			return nil, apperr.New(apperr.InvalidState, "File is already selected")
		}

		return nil, apperr.New(apperr.InvalidState, "File is already not selected")
	}

	ref.IsSelected = selected

	if err := s.db.Save(ref).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to update file record", err)
	}

	return ref, nil
}

// Delete removes the record and detaches it from the event system. The
// storage object is deleted best-effort: a storage failure is logged but
// never blocks the record deletion.
func (s *Files) Delete(ctx context.Context, userID, eventSystemID, fileID string) error {
	if _, err := s.perms.Check(userID, eventSystemID, permission.ActionDelete); err != nil {
		return err
	}

	ref, err := s.fetch(eventSystemID, fileID)
	if err != nil {
		return err
	}

	if ref.URL != "" {
		if err := s.store.Delete(ctx, ref.URL); err != nil {
			zap.L().Error("Failed to delete stored object, record will be removed anyway",
				zap.String("url", ref.URL),
				zap.Error(err))
		}
	}

	err = s.db.Delete(model.FileReference{}, "id = ?", ref.ID).Error
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to delete file record", err)
	}

	return nil
}

// Get returns one file of an event system the user may read.
func (s *Files) Get(userID, eventSystemID, fileID string) (*model.FileReference, error) {
	if _, err := s.perms.Check(userID, eventSystemID, permission.ActionRead); err != nil {
		return nil, err
	}

	return s.fetch(eventSystemID, fileID)
}

// List returns all files of an event system the user may read.
func (s *Files) List(userID, eventSystemID string) ([]model.FileReference, error) {
	if _, err := s.perms.Check(userID, eventSystemID, permission.ActionRead); err != nil {
		return nil, err
	}

	var refs []model.FileReference

	err := s.db.
		Where("event_system_id = ?", eventSystemID).
		Order("upload_date").
		Find(&refs).
		Error
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "Failed to list files", err)
	}

	return refs, nil
}

func (s *Files) fetch(eventSystemID, fileID string) (*model.FileReference, error) {
	var ref model.FileReference

	err := s.db.Where("id = ?", fileID).First(&ref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.New(apperr.NotFound, "File not found")
		}

		return nil, apperr.Wrap(apperr.Unexpected, "Failed to fetch file", err)
	}

	if ref.EventSystemID != eventSystemID {
		return nil, apperr.New(apperr.Validation, "File does not belong to this event system")
	}

	return &ref, nil
}

func (s *Files) ensureNameFree(eventSystemID, name string) error {
	var found bool

	err := s.db.
		Model(model.FileReference{}).
		Select("count(*) > 0").
		Where("event_system_id = ? AND file_name = ?", eventSystemID, name).
		Find(&found).
		Error
	if err != nil {
		return apperr.Wrap(apperr.Unexpected, "Failed to check for name collisions", err)
	}

	if found {
		return apperr.New(apperr.Conflict, "A file with the same name already exists")
	}

	return nil
}
