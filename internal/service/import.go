package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dshrivastava925/Clothing-Site/internal/model"
	"github.com/dshrivastava925/Clothing-Site/pkg/logger"
	"github.com/dshrivastava925/Clothing-Site/pkg/metrics"
)

// Required CSV columns.
const (
	ColumnUserID  = "user_id"
	ColumnRole    = "role"
	ColumnContent = "content"
)

var requiredColumns = []string{ColumnUserID, ColumnRole, ColumnContent}

const importErrorPrefix = "Error processing CSV"

// ImportService turns CSV uploads into conversations.
type ImportService struct {
	conversations *ConversationService
	messages      MessageStore
	logger        *logger.Logger
}

// NewImportService creates an import service.
func NewImportService(conversations *ConversationService, messages MessageStore, log *logger.Logger) *ImportService {
	return &ImportService{
		conversations: conversations,
		messages:      messages,
		logger:        log,
	}
}

type importRow struct {
	role    model.Role
	content string
}

type importGroup struct {
	userID string
	rows   []importRow
}

// Import parses the whole file first, then creates one conversation per
// user_id with messages ordered 1..N in file order. Groups already written
// stay written when a later group fails.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (*model.ImportResult, error) {
	result, err := s.importFile(ctx, filename, r)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("rejected").Inc()
		s.logger.Warn("CSV import failed", zap.String("filename", filename), zap.Error(err))
		return nil, err
	}
	metrics.ImportsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

func (s *ImportService) importFile(ctx context.Context, filename string, r io.Reader) (*model.ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, invalid("File must be CSV")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ValidationError{Message: importErrorPrefix, Err: err}
	}

	groups, err := parseCSV(data)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{Message: "CSV processed successfully"}
	title := model.ImportTitlePrefix + filename

	for _, group := range groups {
		conv, err := s.conversations.create(ctx, group.userID, title, SourceImport)
		if err != nil {
			return nil, &ValidationError{Message: importErrorPrefix, Err: err}
		}
		result.ConversationsCreated++

		msgs := make([]*model.Message, 0, len(group.rows))
		for _, row := range group.rows {
			msgs = append(msgs, &model.Message{
				ConversationID: conv.ID,
				Role:           row.role,
				Content:        row.content,
				CreatedAt:      time.Now().UTC(),
				Order:          len(msgs) + 1,
			})
		}

		if len(msgs) == 0 {
			continue
		}
		if err := s.messages.InsertMessages(ctx, msgs); err != nil {
			return nil, &ValidationError{Message: importErrorPrefix, Err: err}
		}

		result.RecordsProcessed += len(msgs)
		metrics.ImportRowsTotal.Add(float64(len(msgs)))
		for _, msg := range msgs {
			metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()
		}
	}

	s.logger.Info("CSV imported",
		zap.String("filename", filename),
		zap.Int("records_processed", result.RecordsProcessed),
		zap.Int("conversations_created", result.ConversationsCreated),
	)
	return result, nil
}

// parseCSV validates the header and every row and groups rows by user_id.
// Groups are returned in ascending user_id order; rows keep file order.
// Rows with a blank user_id are skipped.
func parseCSV(data []byte) ([]importGroup, error) {
	if !utf8.Valid(data) {
		return nil, &ValidationError{Message: importErrorPrefix, Err: errors.New("file is not valid UTF-8")}
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{Message: importErrorPrefix, Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, &ValidationError{Message: importErrorPrefix, Err: err}
	}

	// A repeated column name keeps its first position.
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, invalid(fmt.Sprintf("CSV must have columns: %v", requiredColumns))
		}
	}

	byUser := make(map[string]*importGroup)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ValidationError{Message: importErrorPrefix, Err: err}
		}

		userID := strings.TrimSpace(record[index[ColumnUserID]])
		if userID == "" {
			continue
		}

		role, ok := model.ParseRole(record[index[ColumnRole]])
		if !ok {
			line, _ := reader.FieldPos(index[ColumnRole])
			return nil, &ValidationError{
				Message: importErrorPrefix,
				Err:     fmt.Errorf("line %d: invalid role %q", line, record[index[ColumnRole]]),
			}
		}

		group, ok := byUser[userID]
		if !ok {
			group = &importGroup{userID: userID}
			byUser[userID] = group
		}
		group.rows = append(group.rows, importRow{role: role, content: record[index[ColumnContent]]})
	}

	groups := make([]importGroup, 0, len(byUser))
	for _, group := range byUser {
		groups = append(groups, *group)
	}
	sortGroups(groups)

	return groups, nil
}

// sortGroups orders groups by user_id, numerically when every user_id is a
// number and lexically otherwise.
func sortGroups(groups []importGroup) {
	keys := make([]float64, len(groups))
	numeric := true
	for i, group := range groups {
		v, err := strconv.ParseFloat(group.userID, 64)
		if err != nil {
			numeric = false
			break
		}
		keys[i] = v
	}

	if !numeric {
		sort.Slice(groups, func(i, j int) bool { return groups[i].userID < groups[j].userID })
		return
	}

	idx := make([]int, len(groups))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka != kb {
			return ka < kb
		}
		return groups[idx[a]].userID < groups[idx[b]].userID
	})

	sorted := make([]importGroup, len(groups))
	for i, j := range idx {
		sorted[i] = groups[j]
	}
	copy(groups, sorted)
}
