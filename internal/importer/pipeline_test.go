package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/campuskeep/staffdir-backend/internal/staff"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
)

type stubBatchWriter struct {
	entries []staff.BatchEntry
	err     error
}

func (w *stubBatchWriter) BatchUpsert(_ context.Context, entries []staff.BatchEntry) error {
	if w.err != nil {
		return w.err
	}
	w.entries = entries
	return nil
}

type stubUserWriter struct {
	users map[string]staff.User
}

func (w *stubUserWriter) SetUser(_ context.Context, uid string, user staff.User) error {
	if w.users == nil {
		w.users = map[string]staff.User{}
	}
	w.users[uid] = user
	return nil
}

type stubPhotoStore struct {
	uploads   map[string][]byte
	uploadErr error
	publicErr error
}

func (s *stubPhotoStore) Upload(_ context.Context, object string, data []byte, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[object] = data
	return nil
}

func (s *stubPhotoStore) MakePublic(_ context.Context, object string) (string, error) {
	if s.publicErr != nil {
		return "", s.publicErr
	}
	return "https://storage.googleapis.com/test-bucket/" + object, nil
}

type stubAccounts struct {
	next    int
	created map[string]string
	err     error
}

func (a *stubAccounts) GetUserByEmail(_ context.Context, _ string) (string, error) {
	return "", errors.New("not implemented")
}

func (a *stubAccounts) CreateUser(_ context.Context, email, _ string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.created == nil {
		a.created = map[string]string{}
	}
	a.next++
	uid := fmt.Sprintf("uid-%d", a.next)
	a.created[email] = uid
	return uid, nil
}

func (a *stubAccounts) DeleteUser(_ context.Context, _ string) error {
	return nil
}

func newTestPipeline(t *testing.T, writer *stubBatchWriter, photos *stubPhotoStore, accounts *stubAccounts) (*Pipeline, *stubUserWriter) {
	t.Helper()
	users := &stubUserWriter{}
	pipeline, err := NewPipeline(writer, users, photos, accounts, nil)
	require.NoError(t, err)
	return pipeline, users
}

func header() []any {
	cells := make([]any, 0, len(RequiredColumns)+1)
	for _, name := range RequiredColumns {
		cells = append(cells, name)
	}
	cells = append(cells, "Photo")
	return cells
}

// staffRow builds a data row aligned with header(): the thirteen required
// columns followed by the photo column.
func staffRow(slNo, empNo, name, mobile, email string) []any {
	return []any{slNo, empNo, name, "Teaching", "Permanent", "Physics", "General", "F", "Professor", mobile, "O+", "12 College Rd", email, ""}
}

func buildWorkbook(t *testing.T, rows ...[]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	return f
}

func workbookReader(t *testing.T, f *excelize.File) *bytes.Reader {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func addPhoto(t *testing.T, f *excelize.File, rowNum int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	cell, err := excelize.CoordinatesToCellName(len(RequiredColumns)+1, rowNum)
	require.NoError(t, err)
	require.NoError(t, f.AddPictureFromBytes("Sheet1", cell, &excelize.Picture{
		Extension: ".png",
		File:      buf.Bytes(),
		Format:    &excelize.GraphicOptions{},
	}))
}

func TestRunRejectsMissingColumns(t *testing.T) {
	f := buildWorkbook(t, []any{"Sl No", "Name", "Email"})
	pipeline, _ := newTestPipeline(t, &stubBatchWriter{}, &stubPhotoStore{}, &stubAccounts{})

	_, err := pipeline.Run(context.Background(), workbookReader(t, f))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok, "expected details map, got %T", typed.Details())
	missing, ok := details["missing_columns"].([]string)
	require.True(t, ok)
	require.Len(t, missing, len(RequiredColumns)-3)
}

func TestRunMapsRowsAndNormalizesMobile(t *testing.T) {
	f := buildWorkbook(t,
		header(),
		staffRow("1", "EMP1", "Asha Nair", "9876543210.0", "asha@college.edu"),
		[]any{""}, // blank row, skipped
		staffRow("2", "EMP2", "Vikram Rao", "9123456780", ""),
	)
	writer := &stubBatchWriter{}
	accounts := &stubAccounts{}
	pipeline, users := newTestPipeline(t, writer, &stubPhotoStore{}, accounts)

	result, err := pipeline.Run(context.Background(), workbookReader(t, f))
	require.NoError(t, err)

	require.Equal(t, 2, result.TotalRecords)
	require.Equal(t, 2, result.ProcessedRecords)
	require.Equal(t, 2, result.UploadedRecords)
	require.Empty(t, result.Errors)

	require.Len(t, writer.entries, 2)
	first := writer.entries[0]
	require.Equal(t, "asha_at_college_dot_edu", first.ID)
	require.Equal(t, "9876543210", first.Record.MobileNo)
	require.Equal(t, "EMP2", writer.entries[1].ID, "row without email keys by emp no")

	// Only the row with both email and mobile gets an account.
	require.Len(t, result.Created, 1)
	require.Equal(t, "asha@college.edu", result.Created[0].Email)
	user, ok := users.users[result.Created[0].UID]
	require.True(t, ok, "expected user record for created account")
	require.False(t, user.IsAdmin)
	require.Equal(t, "1", user.StaffID)
}

func TestRunExtractsAnchoredPhoto(t *testing.T) {
	f := buildWorkbook(t,
		header(),
		staffRow("1", "EMP1", "Asha Nair", "9876543210", "asha@college.edu"),
	)
	addPhoto(t, f, 2)

	writer := &stubBatchWriter{}
	photos := &stubPhotoStore{}
	pipeline, _ := newTestPipeline(t, writer, photos, &stubAccounts{})

	result, err := pipeline.Run(context.Background(), workbookReader(t, f))
	require.NoError(t, err)
	require.Equal(t, 1, result.ProcessedRecords)

	wantObject := "staff_photos/asha_at_college_dot_edu.png"
	require.Contains(t, photos.uploads, wantObject)
	require.True(t, strings.HasSuffix(writer.entries[0].Record.PhotoURL, wantObject),
		"expected photo url recorded, got %q", writer.entries[0].Record.PhotoURL)
}

func TestRunPhotoFailureDegradesToEmptyURL(t *testing.T) {
	f := buildWorkbook(t,
		header(),
		staffRow("1", "EMP1", "Asha Nair", "9876543210", "asha@college.edu"),
	)
	addPhoto(t, f, 2)

	writer := &stubBatchWriter{}
	pipeline, _ := newTestPipeline(t, writer, &stubPhotoStore{uploadErr: errors.New("bucket gone")}, &stubAccounts{})

	result, err := pipeline.Run(context.Background(), workbookReader(t, f))
	require.NoError(t, err)
	require.Equal(t, 1, result.ProcessedRecords, "photo failure must not drop the row")
	require.Empty(t, writer.entries[0].Record.PhotoURL)
}

func TestRunRecordsAccountErrorsWithoutDroppingRows(t *testing.T) {
	f := buildWorkbook(t,
		header(),
		staffRow("1", "EMP1", "Asha Nair", "9876543210", "asha@college.edu"),
	)
	writer := &stubBatchWriter{}
	pipeline, _ := newTestPipeline(t, writer, &stubPhotoStore{}, &stubAccounts{err: errors.New("email exists")})

	result, err := pipeline.Run(context.Background(), workbookReader(t, f))
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	require.Equal(t, 2, result.Errors[0].Row)
	require.Equal(t, 1, result.ProcessedRecords, "account failure must not exclude the roster write")
	require.Len(t, writer.entries, 1)
	require.Empty(t, result.Created)
}

func TestRunSurfacesCommitFailure(t *testing.T) {
	f := buildWorkbook(t,
		header(),
		staffRow("1", "EMP1", "Asha Nair", "9876543210", "asha@college.edu"),
	)
	writer := &stubBatchWriter{err: pkgerrors.New(pkgerrors.CodeInternal, "commit failed")}
	pipeline, _ := newTestPipeline(t, writer, &stubPhotoStore{}, &stubAccounts{})

	_, err := pipeline.Run(context.Background(), workbookReader(t, f))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInternal, typed.Code())
}

func TestNormalizeMobile(t *testing.T) {
	require.Equal(t, "9876543210", NormalizeMobile("9876543210.0"))
	require.Equal(t, "9876543210", NormalizeMobile(" 9876543210 "))
	require.Equal(t, "", NormalizeMobile(""))
}
