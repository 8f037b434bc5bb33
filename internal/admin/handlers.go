package admin

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/agentsform/studymate-api/internal/store"
)

type statsResponse struct {
	TotalUsers       int            `json:"totalUsers"`
	TotalChildren    int            `json:"totalChildren"`
	QuizzesCompleted int            `json:"quizzesCompleted"`
	UsersByTier      map[string]int `json:"usersByTier"`
	Timestamp        string         `json:"timestamp"`
}

type userSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Tier      string `json:"tier"`
	CreatedAt string `json:"createdAt"`
}

type childSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	YearLevel int    `json:"yearLevel"`
	ParentID  string `json:"parentId"`
	CreatedAt string `json:"createdAt"`
}

// KeyMiddleware returns middleware that requires a valid admin API key.
func KeyMiddleware(adminKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("X-Admin-Key"))
		if key == "" {
			// Also check Authorization: Bearer <key>
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}

		if key == "" || key != adminKey {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Admin access required",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// HandleStats returns an authenticated handler with an overview snapshot.
func HandleStats(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		users, err := st.CountUsers()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		children, err := st.CountChildren()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		quizzes, err := st.CountQuizResults()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		byTier, err := st.UsersByTier()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		tiers := make(map[string]int, len(byTier))
		for tier, n := range byTier {
			tiers[string(tier)] = n
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statsResponse{
			TotalUsers:       users,
			TotalChildren:    children,
			QuizzesCompleted: quizzes,
			UsersByTier:      tiers,
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleListUsers returns an authenticated handler that lists all users.
func HandleListUsers(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		users, err := st.ListUsers()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]userSummary, 0, len(users))
		for _, u := range users {
			out = append(out, userSummary{
				ID:        u.ID,
				Email:     u.Email,
				Tier:      string(store.NormalizeTier(u.Tier)),
				CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"users": out,
			"count": len(out),
		})
	}
}

// HandleListChildren returns an authenticated handler that lists all child profiles.
func HandleListChildren(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// Optional parent filter
		parentFilter := strings.TrimSpace(r.URL.Query().Get("parent"))

		var children []*store.Child
		var err error
		if parentFilter != "" {
			children, err = st.ListChildrenByParent(parentFilter)
		} else {
			children, err = st.ListChildren()
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]childSummary, 0, len(children))
		for _, c := range children {
			out = append(out, childSummary{
				ID:        c.ID,
				Name:      c.Name,
				Username:  c.Username,
				YearLevel: c.YearLevel,
				ParentID:  c.ParentID,
				CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"children": out,
			"count":    len(out),
		})
	}
}
