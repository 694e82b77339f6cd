package importer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"github.com/campuskeep/staffdir-backend/internal/identity"
	"github.com/campuskeep/staffdir-backend/internal/staff"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

// Required workbook columns, matched case-insensitively against the header
// row. The photo column is optional.
var RequiredColumns = []string{
	"Sl No",
	"Emp No",
	"Name",
	"Type",
	"Contract Type",
	"Department",
	"Category",
	"Gender",
	"Designation",
	"Mobile No",
	"Blood Group",
	"Permanent Address",
	"Email",
}

const photoColumn = "Photo"

const photoPrefix = "staff_photos"

type batchWriter interface {
	BatchUpsert(ctx context.Context, entries []staff.BatchEntry) error
}

type userWriter interface {
	SetUser(ctx context.Context, uid string, user staff.User) error
}

type photoStore interface {
	Upload(ctx context.Context, object string, data []byte, contentType string) error
	MakePublic(ctx context.Context, object string) (string, error)
}

// RowError records one failed spreadsheet row. Row numbers are 1-based and
// include the header row, matching what the admin sees in their editor.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type CreatedAccount struct {
	Email string `json:"email"`
	UID   string `json:"uid"`
}

type Result struct {
	TotalRecords     int              `json:"totalRecords"`
	ProcessedRecords int              `json:"processedRecords"`
	UploadedRecords  int              `json:"uploadedRecords"`
	Created          []CreatedAccount `json:"created"`
	Errors           []RowError       `json:"errors"`
}

// Pipeline maps uploaded workbooks onto the roster: header validation,
// per-row field coercion, embedded photo extraction, identity-provider
// provisioning, and a single batched upsert at the end.
type Pipeline struct {
	writer   batchWriter
	users    userWriter
	photos   photoStore
	accounts identity.UserManager
	logg     *logger.Logger
	now      func() time.Time
}

func NewPipeline(writer batchWriter, users userWriter, photos photoStore, accounts identity.UserManager, logg *logger.Logger) (*Pipeline, error) {
	if writer == nil {
		return nil, fmt.Errorf("batch writer required")
	}
	if users == nil {
		return nil, fmt.Errorf("user writer required")
	}
	if photos == nil {
		return nil, fmt.Errorf("photo store required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account manager required")
	}
	return &Pipeline{
		writer:   writer,
		users:    users,
		photos:   photos,
		accounts: accounts,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Run parses the workbook and commits all mapped rows in one batch. Row
// failures are collected, never aborting the batch; a failed photo
// extraction degrades to an empty photo URL. Photos are uploaded before the
// roster commit, so a failed commit can orphan blobs.
func (p *Pipeline) Run(ctx context.Context, workbook io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(workbook)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read workbook")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && p.logg != nil {
			p.logg.Warn(ctx, "closing workbook failed")
		}
	}()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook has no sheets")
	}
	sheet := sheetList[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read sheet")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "workbook is empty")
	}

	columns, missing := mapColumns(rows[0])
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required columns").
			WithDetails(map[string]any{"missing_columns": missing})
	}
	photoIdx, hasPhoto := columns[normalizeHeader(photoColumn)]

	result := &Result{Created: []CreatedAccount{}, Errors: []RowError{}}
	entries := []staff.BatchEntry{}

	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		result.TotalRecords++

		record := staff.Record{
			SlNo:             cellAt(row, columns, "Sl No"),
			EmpNo:            cellAt(row, columns, "Emp No"),
			Name:             cellAt(row, columns, "Name"),
			Type:             cellAt(row, columns, "Type"),
			ContractType:     cellAt(row, columns, "Contract Type"),
			Department:       cellAt(row, columns, "Department"),
			Category:         cellAt(row, columns, "Category"),
			Gender:           cellAt(row, columns, "Gender"),
			Designation:      cellAt(row, columns, "Designation"),
			MobileNo:         NormalizeMobile(cellAt(row, columns, "Mobile No")),
			BloodGroup:       cellAt(row, columns, "Blood Group"),
			PermanentAddress: cellAt(row, columns, "Permanent Address"),
			Email:            cellAt(row, columns, "Email"),
		}

		if hasPhoto {
			record.PhotoURL = p.extractPhoto(ctx, f, sheet, photoIdx, rowNum, record)
		}

		if record.Email != "" && record.MobileNo != "" {
			p.provisionAccount(ctx, rowNum, record, result)
		}

		entries = append(entries, staff.BatchEntry{ID: documentKey(record), Record: record})
		result.ProcessedRecords++
	}

	if err := p.writer.BatchUpsert(ctx, entries); err != nil {
		return nil, err
	}
	result.UploadedRecords = len(entries)

	return result, nil
}

// extractPhoto pulls the image anchored to the photo cell and stores it
// publicly. Any failure degrades to an empty URL for the row.
func (p *Pipeline) extractPhoto(ctx context.Context, f *excelize.File, sheet string, photoIdx, rowNum int, record staff.Record) string {
	cell, err := excelize.CoordinatesToCellName(photoIdx+1, rowNum)
	if err != nil {
		return ""
	}
	pictures, err := f.GetPictures(sheet, cell)
	if err != nil || len(pictures) == 0 {
		return ""
	}
	picture := pictures[0]

	object := fmt.Sprintf("%s/%s%s", photoPrefix, p.photoID(record), picture.Extension)
	contentType := mimetype.Detect(picture.File).String()
	if err := p.photos.Upload(ctx, object, picture.File, contentType); err != nil {
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "row", rowNum), "photo upload failed")
		}
		return ""
	}
	url, err := p.photos.MakePublic(ctx, object)
	if err != nil {
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "row", rowNum), "making photo public failed")
		}
		return ""
	}
	return url
}

// photoID prefers the storage-safe email, then the serial number, then a
// time-based fallback so concurrent anonymous rows cannot collide on a
// constant name.
func (p *Pipeline) photoID(record staff.Record) string {
	if record.Email != "" {
		return staff.SafeKey(record.Email)
	}
	if record.SlNo != "" {
		return record.SlNo
	}
	return fmt.Sprintf("staff_%d", p.now().UnixNano())
}

// provisionAccount mirrors the admin bulk-upload flow: one identity-provider
// account per row with the mobile number as the initial password. Existing
// accounts are recorded as row errors and the roster write still proceeds.
func (p *Pipeline) provisionAccount(ctx context.Context, rowNum int, record staff.Record, result *Result) {
	uid, err := p.accounts.CreateUser(ctx, record.Email, record.MobileNo)
	if err != nil {
		result.Errors = append(result.Errors, RowError{
			Row:     rowNum,
			Message: fmt.Sprintf("account for %s: %v", record.Email, err),
		})
		return
	}
	if err := p.users.SetUser(ctx, uid, staff.User{
		Email:   record.Email,
		IsAdmin: false,
		StaffID: record.SlNo,
	}); err != nil {
		result.Errors = append(result.Errors, RowError{
			Row:     rowNum,
			Message: fmt.Sprintf("user record for %s: %v", record.Email, err),
		})
		return
	}
	result.Created = append(result.Created, CreatedAccount{Email: record.Email, UID: uid})
}

// documentKey prefers the storage-safe email, then the employee number. An
// empty key lets the store generate one.
func documentKey(record staff.Record) string {
	if record.Email != "" {
		return staff.SafeKey(record.Email)
	}
	return strings.TrimSpace(record.EmpNo)
}

func mapColumns(header []string) (map[string]int, []string) {
	columns := map[string]int{}
	for idx, name := range header {
		normalized := normalizeHeader(name)
		if normalized == "" {
			continue
		}
		if _, exists := columns[normalized]; !exists {
			columns[normalized] = idx
		}
	}
	missing := []string{}
	for _, name := range RequiredColumns {
		if _, ok := columns[normalizeHeader(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return columns, missing
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cellAt(row []string, columns map[string]int, name string) string {
	idx, ok := columns[normalizeHeader(name)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// NormalizeMobile strips the trailing ".0" that numeric-typed phone columns
// pick up during spreadsheet coercion.
func NormalizeMobile(mobile string) string {
	return strings.TrimSuffix(strings.TrimSpace(mobile), ".0")
}
