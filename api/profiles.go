package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/store"
)

type profileView struct {
	store.MerchantProfile
	Progress completion.Summary `json:"progress"`
}

func newProfileView(p store.MerchantProfile) profileView {
	return profileView{MerchantProfile: p, Progress: completion.Summarize(p.Flags())}
}

// targetMerchant is the caller's own merchant, or for administrators the one
// named by ?merchantId=.
func targetMerchant(c *gin.Context) (string, bool) {
	sess := sessionFrom(c)
	if id := c.Query("merchantId"); id != "" && sess.Role == shared.RoleAdmin {
		return id, true
	}
	if sess.MerchantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "merchantId is required"})
		return "", false
	}
	return sess.MerchantID, true
}

func (s *Server) profile(c *gin.Context) {
	id, ok := targetMerchant(c)
	if !ok {
		return
	}
	p, err := s.Merchants.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileView(p))
}

func (s *Server) profiles(c *gin.Context) {
	status := shared.OnboardingStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unknown status " + string(status)})
		return
	}
	list, err := s.Merchants.List(c.Request.Context(), status)
	if err != nil {
		s.fail(c, err)
		return
	}
	views := make([]profileView, len(list))
	for i, p := range list {
		views[i] = newProfileView(p)
	}
	c.JSON(http.StatusOK, views)
}

type stepState struct {
	Completed bool `json:"completed"`
}

func (s *Server) formStatus(c *gin.Context) {
	id, ok := targetMerchant(c)
	if !ok {
		return
	}
	p, err := s.Merchants.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	flags := p.Flags()
	out := make(map[completion.Step]stepState, completion.TotalSteps)
	for _, step := range completion.Steps {
		out[step] = stepState{Completed: flags[step]}
	}
	c.JSON(http.StatusOK, out)
}
