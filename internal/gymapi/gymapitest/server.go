// Package gymapitest содержит фальшивый бекенд клуба для тестов чекера.
// Сервер хранит клиентов в памяти, считает payment_due_date тем же
// правилом "+30 дней" и умеет эмулировать типовые поломки бекенда.
package gymapitest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gymclub-checker/internal/lib/duedate"
	"github.com/magabrotheeeer/gymclub-checker/internal/models"
)

// Server фальшивый API клуба. Нулевое значение не годится,
// используйте NewServer.
type Server struct {
	router chi.Router

	mu            sync.Mutex
	clients       map[int]models.Client
	notifications map[string]*models.Notification
	nextID        int

	// Types справочник типов абонементов, отдаваемый сервером.
	Types []models.MembershipType
	// DueDateSkew смещение в днях для эмуляции неверного расчёта даты платежа.
	DueDateSkew int
	// KeepDeleted эмулирует бекенд, у которого DELETE не удаляет запись.
	KeepDeleted bool
	// NotifyFailure переводит уведомления в состояние failed вместо sent.
	NotifyFailure bool
}

// NewServer создает фальшивый бекенд со стандартным справочником типов.
func NewServer() *Server {
	s := &Server{
		clients:       make(map[int]models.Client),
		notifications: make(map[string]*models.Notification),
		Types: []models.MembershipType{
			{Name: "monthly", DurationMonth: 1, Price: 50},
			{Name: "quarterly", DurationMonth: 3, Price: 135},
			{Name: "yearly", DurationMonth: 12, Price: 480},
		},
	}

	r := chi.NewRouter()
	r.Post("/clients", s.createClient)
	r.Get("/clients/{id}", s.readClient)
	r.Put("/clients/{id}", s.updateClient)
	r.Delete("/clients/{id}", s.deleteClient)
	r.Get("/membership-types", s.listMembershipTypes)
	r.Post("/clients/{id}/notifications", s.requestNotification)
	r.Get("/notifications/{id}", s.readNotification)
	s.router = r
	return s
}

// ServeHTTP реализует http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ClientCount возвращает количество живых записей клиентов.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) ok(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.WriteHeader(status)
	render.JSON(w, r, map[string]any{"status": "OK", "data": data})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.WriteHeader(status)
	render.JSON(w, r, map[string]any{"status": "Error", "error": msg})
}

func (s *Server) knownType(name string) bool {
	for _, mt := range s.Types {
		if mt.Name == name {
			return true
		}
	}
	return false
}

func (s *Server) dueDate(startDate string) (string, bool) {
	start, err := duedate.Parse(startDate)
	if err != nil {
		return "", false
	}
	return duedate.FromDayNumber(start.DayNumber() + duedate.PaymentTermDays + s.DueDateSkew).String(), true
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req models.DummyClient
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.knownType(req.MembershipType) {
		s.fail(w, r, http.StatusUnprocessableEntity, "unknown membership type")
		return
	}
	due, ok := s.dueDate(req.StartDate)
	if !ok {
		s.fail(w, r, http.StatusUnprocessableEntity, "invalid start date")
		return
	}

	s.mu.Lock()
	s.nextID++
	client := models.Client{
		ID:             s.nextID,
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		MembershipType: req.MembershipType,
		StartDate:      req.StartDate,
		PaymentDueDate: due,
		IsActive:       true,
	}
	s.clients[client.ID] = client
	s.mu.Unlock()

	s.ok(w, r, http.StatusCreated, client)
}

func (s *Server) readClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid client id")
		return
	}

	s.mu.Lock()
	client, ok := s.clients[id]
	s.mu.Unlock()
	if !ok {
		s.fail(w, r, http.StatusNotFound, "client not found")
		return
	}
	s.ok(w, r, http.StatusOK, client)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid client id")
		return
	}
	var req models.DummyClient
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.knownType(req.MembershipType) {
		s.fail(w, r, http.StatusUnprocessableEntity, "unknown membership type")
		return
	}
	due, ok := s.dueDate(req.StartDate)
	if !ok {
		s.fail(w, r, http.StatusUnprocessableEntity, "invalid start date")
		return
	}

	s.mu.Lock()
	client, found := s.clients[id]
	if found {
		client.FullName = req.FullName
		client.Email = req.Email
		client.Phone = req.Phone
		client.MembershipType = req.MembershipType
		client.StartDate = req.StartDate
		client.PaymentDueDate = due
		s.clients[id] = client
	}
	s.mu.Unlock()

	if !found {
		s.fail(w, r, http.StatusNotFound, "client not found")
		return
	}
	s.ok(w, r, http.StatusOK, client)
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid client id")
		return
	}

	s.mu.Lock()
	_, found := s.clients[id]
	if found && !s.KeepDeleted {
		delete(s.clients, id)
	}
	s.mu.Unlock()

	if !found {
		s.fail(w, r, http.StatusNotFound, "client not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMembershipTypes(w http.ResponseWriter, r *http.Request) {
	s.ok(w, r, http.StatusOK, s.Types)
}

func (s *Server) requestNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid client id")
		return
	}
	var req models.DummyNotification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Template == "" {
		s.fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	_, found := s.clients[id]
	var notification *models.Notification
	if found {
		notification = &models.Notification{
			ID:       uuid.NewString(),
			ClientID: id,
			Template: req.Template,
			Status:   "queued",
		}
		s.notifications[notification.ID] = notification
	}
	s.mu.Unlock()

	if !found {
		s.fail(w, r, http.StatusNotFound, "client not found")
		return
	}
	s.ok(w, r, http.StatusAccepted, notification)
}

func (s *Server) readNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	notification, ok := s.notifications[id]
	if ok && notification.Status == "queued" {
		// Первое чтение после постановки в очередь: уведомление "доставлено".
		if s.NotifyFailure {
			notification.Status = "failed"
		} else {
			notification.Status = "sent"
		}
	}
	var snapshot models.Notification
	if ok {
		snapshot = *notification
	}
	s.mu.Unlock()

	if !ok {
		s.fail(w, r, http.StatusNotFound, "notification not found")
		return
	}
	s.ok(w, r, http.StatusOK, snapshot)
}
