package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EmployeeHeader сотрудник, от имени которого работает чат. Аутентификации нет,
// заголовок ставит клиент
const EmployeeHeader = "X-Employee-ID"

const defaultQuickNotesLimit = 20

type NoteService interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	List(ctx context.Context) ([]*model.Note, error)
	Update(ctx context.Context, n *model.Note) (*model.Note, error)
	Delete(ctx context.Context, id string) error
	AddQuick(ctx context.Context, text string) (*model.QuickNote, error)
	ListQuick(ctx context.Context, limit int) ([]*model.QuickNote, error)
	DeleteQuick(ctx context.Context, id string) error
}

type ChatService interface {
	Start(ctx context.Context, creatorID string, employeeIDs ...string) (*model.Conversation, error)
	AddParticipant(ctx context.Context, conversationID, employeeID string) (*model.ChatParticipant, error)
	List(ctx context.Context, employeeID string) ([]*model.Conversation, error)
	UnreadCount(ctx context.Context, employeeID string) (int, error)
	Send(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error)
	MarkAsRead(ctx context.Context, conversationID, employeeID string) error
}

// SettingsService состояние настроек агентства
type SettingsService interface {
	Snapshot() model.AgencySettings
	Update(ctx context.Context, patch model.AgencySettingsPatch) (model.AgencySettings, error)
}

type MaintenanceService interface {
	Reset(ctx context.Context) (map[string]int64, error)
}

// OfficeHandler заметки, чат, настройки агентства и администрирование
type OfficeHandler struct {
	notes       NoteService
	chat        ChatService
	settings    SettingsService
	maintenance MaintenanceService
	logger      *zap.Logger
}

func NewOfficeHandler(
	notes NoteService,
	chat ChatService,
	settings SettingsService,
	maintenance MaintenanceService,
	logger *zap.Logger,
) *OfficeHandler {
	return &OfficeHandler{
		notes:       notes,
		chat:        chat,
		settings:    settings,
		maintenance: maintenance,
		logger:      logger,
	}
}

func (h *OfficeHandler) NoteRoutes(r chi.Router) {
	r.Get("/", h.ListNotes)
	r.Post("/", h.CreateNote)
	r.Put("/{noteID}", h.UpdateNote)
	r.Delete("/{noteID}", h.DeleteNote)
}

func (h *OfficeHandler) QuickNoteRoutes(r chi.Router) {
	r.Get("/", h.ListQuickNotes)
	r.Post("/", h.AddQuickNote)
	r.Delete("/{noteID}", h.DeleteQuickNote)
}

func (h *OfficeHandler) ChatRoutes(r chi.Router) {
	r.Get("/conversations", h.ListConversations)
	r.Post("/conversations", h.StartConversation)
	r.Get("/unread", h.UnreadCount)
	r.Post("/conversations/{conversationID}/participants", h.AddChatParticipant)
	r.Post("/conversations/{conversationID}/messages", h.SendMessage)
	r.Post("/conversations/{conversationID}/read", h.MarkAsRead)
}

func (h *OfficeHandler) SettingsRoutes(r chi.Router) {
	r.Get("/", h.GetSettings)
	r.Patch("/", h.UpdateSettings)
}

// --- заметки ---

func (h *OfficeHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *OfficeHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var n model.Note
	if err := decodeJSON(r, &n); err != nil {
		writeBadJSON(w, err)
		return
	}

	created, err := h.notes.Create(r.Context(), &n)
	if err != nil {
		writeServiceError(w, h.logger, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *OfficeHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var n model.Note
	if err := decodeJSON(r, &n); err != nil {
		writeBadJSON(w, err)
		return
	}
	n.ID = chi.URLParam(r, "noteID")

	updated, err := h.notes.Update(r.Context(), &n)
	if err != nil {
		writeServiceError(w, h.logger, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *OfficeHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), chi.URLParam(r, "noteID")); err != nil {
		writeServiceError(w, h.logger, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quickNoteRequest struct {
	Text string `json:"text"`
}

func (h *OfficeHandler) ListQuickNotes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 {
		limit = defaultQuickNotesLimit
	}

	notes, err := h.notes.ListQuick(r.Context(), int(limit))
	if err != nil {
		writeServiceError(w, h.logger, "list quick notes", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *OfficeHandler) AddQuickNote(w http.ResponseWriter, r *http.Request) {
	var req quickNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	n, err := h.notes.AddQuick(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, h.logger, "add quick note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *OfficeHandler) DeleteQuickNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.DeleteQuick(r.Context(), chi.URLParam(r, "noteID")); err != nil {
		writeServiceError(w, h.logger, "delete quick note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- чат ---

type startConversationRequest struct {
	Participants []string `json:"participants"`
}

type chatParticipantRequest struct {
	EmployeeID string `json:"employee_id"`
}

type chatMessageRequest struct {
	Content string `json:"content"`
}

// employeeID достаёт сотрудника из заголовка. Пустой - 400
func employeeID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(EmployeeHeader))
	if id == "" {
		writeError(w, http.StatusBadRequest, EmployeeHeader+" header is required")
		return "", false
	}
	return id, true
}

func (h *OfficeHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeID(w, r)
	if !ok {
		return
	}

	conversations, err := h.chat.List(r.Context(), employee)
	if err != nil {
		writeServiceError(w, h.logger, "list conversations", err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// POST /api/chat/conversations {"participants": ["..."]}
// Создатель из заголовка добавляется в участники автоматически
func (h *OfficeHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeID(w, r)
	if !ok {
		return
	}

	var req startConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	c, err := h.chat.Start(r.Context(), employee, req.Participants...)
	if err != nil {
		writeServiceError(w, h.logger, "start conversation", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *OfficeHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeID(w, r)
	if !ok {
		return
	}

	n, err := h.chat.UnreadCount(r.Context(), employee)
	if err != nil {
		writeServiceError(w, h.logger, "unread count", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee_id": employee, "unread": n})
}

func (h *OfficeHandler) AddChatParticipant(w http.ResponseWriter, r *http.Request) {
	var req chatParticipantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	p, err := h.chat.AddParticipant(r.Context(), chi.URLParam(r, "conversationID"), req.EmployeeID)
	if err != nil {
		writeServiceError(w, h.logger, "add chat participant", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *OfficeHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeID(w, r)
	if !ok {
		return
	}

	var req chatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}

	m, err := h.chat.Send(r.Context(), &model.ChatMessage{
		ConversationID: chi.URLParam(r, "conversationID"),
		SenderID:       employee,
		Content:        req.Content,
	})
	if err != nil {
		writeServiceError(w, h.logger, "send message", err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *OfficeHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	employee, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.chat.MarkAsRead(r.Context(), chi.URLParam(r, "conversationID"), employee); err != nil {
		writeServiceError(w, h.logger, "mark conversation as read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- настройки ---

func (h *OfficeHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Snapshot())
}

// PATCH /api/settings
// Пустые поля патча не меняются. Изменение страны сразу влияет на классификацию поездок
func (h *OfficeHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.AgencySettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeBadJSON(w, err)
		return
	}

	settings, err := h.settings.Update(r.Context(), patch)
	if err != nil {
		writeServiceError(w, h.logger, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// --- администрирование ---

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// POST /api/admin/reset {"confirm": true}
// Удаляет все рабочие данные, отвечает количеством удалённых строк по таблицам
func (h *OfficeHandler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, err)
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "reset must be confirmed")
		return
	}

	deleted, err := h.maintenance.Reset(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
