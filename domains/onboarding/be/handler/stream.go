package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/code-merge/accompany/domains/onboarding/be/service"
	"github.com/code-merge/accompany/domains/onboarding/be/session"
)

// FinishStream runs provisioning and relays its progress as server-sent
// events, one "log" event per line and a closing "done" event. It must be
// mounted outside any request-timeout middleware: a run can legitimately
// outlast every sensible per-request deadline.
//
// The run is claimed inside a single session update. The first stream to
// arrive flips the started flag and takes the collected form data; any later
// stream, and any stream on an already-completed session, gets a bare done
// event. The parked admin password leaves the session the moment a run
// claims it.
func (h *Handler) FinishStream(w http.ResponseWriter, r *http.Request) {
	handle, ok := h.sessionHandle(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.loggerFrom(r.Context()).Error("response writer does not support flushing")
		h.respondError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	var (
		req     service.Request
		claimed bool
	)
	handle.Update(func(st *session.State) {
		if st.ProvisioningStarted || st.OnboardingComplete {
			return
		}
		st.ProvisioningStarted = true
		req = requestFromState(st)
		st.AdminPassword = ""
		claimed = true
	})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if !claimed {
		writeDoneEvent(w)
		flusher.Flush()
		return
	}

	doneSeen := false
	for msg := range h.pipeline.Provision(r.Context(), req) {
		if msg == service.DoneSentinel {
			doneSeen = true
			writeDoneEvent(w)
		} else {
			writeLogEvent(w, msg)
		}
		flusher.Flush()
	}

	// Wizard data is cleared only when the run reported done. A connection
	// dropped mid-run leaves the claim in place, so a retry cannot start a
	// second run against the same site.
	if doneSeen {
		handle.Update(func(st *session.State) {
			st.ClearOnboarding()
			st.OnboardingComplete = true
			st.ProvisioningStarted = false
		})
	}
}

// requestFromState assembles the pipeline request from the collected steps.
// Only the fields of the active database mode travel.
func requestFromState(st *session.State) service.Request {
	req := service.Request{
		Mode:          st.EffectiveDBType(),
		AdminEmail:    st.AdminForm.Email,
		AdminPassword: st.AdminPassword,
		CompanyName:   st.CompanyForm.CompanyName,
		Industry:      st.CompanyForm.Industry,
		Modules:       st.SystemForm.Modules,
	}

	if req.Mode == service.ModeCustom {
		req.Custom = service.CustomDBRequest{
			DBName:   st.CustomForm.DBName,
			Host:     st.CustomForm.Host,
			Port:     st.CustomForm.Port,
			User:     st.CustomForm.User,
			Password: st.CustomForm.Password,
			SSL:      st.CustomForm.SSL,
			CertPath: st.SSLCertPath,
		}
	} else {
		req.DBName = st.StandardForm.DBName
	}

	return req
}

func writeLogEvent(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "event: log\ndata: %s\n\n", msg)
}

func writeDoneEvent(w io.Writer) {
	_, _ = io.WriteString(w, "event: done\ndata: done\n\n")
}
