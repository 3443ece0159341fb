// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jotutor/jotutor/internal/catalog"
	"github.com/jotutor/jotutor/internal/middleware"
	"github.com/jotutor/jotutor/internal/model"
	"github.com/jotutor/jotutor/internal/nav"
	"github.com/jotutor/jotutor/internal/payment"
)

// checkoutForm echoes the submitted values back into the form on a
// failed attempt.
type checkoutForm struct {
	StudentName  string
	StudentEmail string
}

// Checkout renders the payment form for one course.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if !h.visit(r, nav.PagePayment, courseID) {
		h.renderDenied(w, r)
		return
	}

	course, ok, err := h.catalog.Course(r.Context(), courseID, middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if !ok {
		h.renderNotFound(w, r)
		return
	}

	h.renderCheckout(w, r, course, checkoutForm{})
}

func (h *Handler) renderCheckout(w http.ResponseWriter, r *http.Request, course catalog.CourseView, form checkoutForm) {
	data := struct {
		Course catalog.CourseView
		Form   checkoutForm
	}{course, form}
	h.render(w, r, "site/checkout", h.pageData(r, t(r, "payment.title"), data))
}

// SubmitCheckout runs one checkout attempt and routes the buyer to the
// matching result page.
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	course, ok, err := h.catalog.Course(r.Context(), courseID, middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if !ok {
		h.renderNotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	form := checkoutForm{
		StudentName:  strings.TrimSpace(r.PostFormValue("student_name")),
		StudentEmail: strings.TrimSpace(r.PostFormValue("student_email")),
	}

	req := payment.CheckoutRequest{
		CourseID:     course.ID,
		StudentName:  form.StudentName,
		StudentEmail: form.StudentEmail,
		Amount:       course.PriceJOD,
		Method:       r.PostFormValue("method"),
	}
	if req.Method == model.PaymentMethodCard {
		req.Card = cardFromForm(r)
	}

	p, err := h.payments.Checkout(r.Context(), req)
	switch {
	case errors.Is(err, payment.ErrCheckoutInFlight):
		h.renderer.SetFlash(r, t(r, "payment.in_flight"), "error")
		h.renderCheckout(w, r, course, form)
		return
	case err != nil && p.ID == "":
		// Nothing was recorded; let the buyer fix the form.
		h.renderer.SetFlash(r, t(r, "payment.error"), "error")
		h.renderCheckout(w, r, course, form)
		return
	case err != nil:
		// The attempt exists but the gateway verdict is unknown. The
		// sweeper will settle it; show it as-is.
		h.renderer.SetFlash(r, t(r, "payment.error"), "error")
	}

	if p.Method == model.PaymentMethodBank {
		http.Redirect(w, r, "/checkout/transfer/"+p.ID, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/checkout/result/"+p.ID, http.StatusSeeOther)
}

// cardFromForm collects the card fields. Expiry is entered as MM/YY.
func cardFromForm(r *http.Request) *payment.CardDetails {
	card := &payment.CardDetails{
		HolderName: strings.TrimSpace(r.PostFormValue("card_holder")),
		Number:     strings.ReplaceAll(r.PostFormValue("card_number"), " ", ""),
		CVV:        strings.TrimSpace(r.PostFormValue("card_cvv")),
	}
	if month, year, ok := strings.Cut(r.PostFormValue("card_expiry"), "/"); ok {
		card.ExpiryMonth, _ = strconv.Atoi(strings.TrimSpace(month))
		card.ExpiryYear, _ = strconv.Atoi(strings.TrimSpace(year))
		if card.ExpiryYear < 100 {
			card.ExpiryYear += 2000
		}
	}
	return card
}

// PaymentResult shows the terminal (or still pending) state of one
// payment attempt.
func (h *Handler) PaymentResult(w http.ResponseWriter, r *http.Request) {
	p, course, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	data := struct {
		Payment model.Payment
		Course  catalog.CourseView
	}{p, course}
	h.render(w, r, "site/payment_result", h.pageData(r, t(r, "payment.title"), data))
}

// BankTransfer shows the transfer instructions for an initiated
// bank-transfer payment.
func (h *Handler) BankTransfer(w http.ResponseWriter, r *http.Request) {
	p, course, ok := h.loadPayment(w, r)
	if !ok {
		return
	}
	if p.Method != model.PaymentMethodBank {
		http.Redirect(w, r, "/checkout/result/"+p.ID, http.StatusSeeOther)
		return
	}

	data := struct {
		Payment      model.Payment
		Course       catalog.CourseView
		Instructions payment.TransferInstructions
	}{p, course, payment.NewTransferInstructions(p, h.bank)}
	h.render(w, r, "site/bank_transfer", h.pageData(r, t(r, "payment.method_bank"), data))
}

// TransferQR serves the transfer instructions as a PNG QR code.
func (h *Handler) TransferQR(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.Get(r.Context(), chi.URLParam(r, "paymentID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	png, err := payment.NewTransferInstructions(p, h.bank).QRCodePNG(256)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(png)
}

// loadPayment resolves the payment in the URL plus its course. The
// payment page stays the current navigation target.
func (h *Handler) loadPayment(w http.ResponseWriter, r *http.Request) (model.Payment, catalog.CourseView, bool) {
	p, err := h.payments.Get(r.Context(), chi.URLParam(r, "paymentID"))
	if err != nil {
		h.renderNotFound(w, r)
		return model.Payment{}, catalog.CourseView{}, false
	}

	if !h.visit(r, nav.PagePayment, p.CourseID) {
		h.renderDenied(w, r)
		return model.Payment{}, catalog.CourseView{}, false
	}

	course, ok, err := h.catalog.Course(r.Context(), p.CourseID, middleware.GetLang(r))
	if err != nil {
		h.renderServerError(w, r, err)
		return model.Payment{}, catalog.CourseView{}, false
	}
	if !ok {
		h.renderNotFound(w, r)
		return model.Payment{}, catalog.CourseView{}, false
	}
	return p, course, true
}

// gatewayCallback is the card processor's server-to-server notification.
type gatewayCallback struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// PaymentCallback settles a payment from the gateway's asynchronous
// notification. Retries are acknowledged without rewriting the verdict.
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var cb gatewayCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if cb.OrderID == "" || cb.Status == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	status := payment.MapGatewayStatus(cb.Status)
	if _, err := h.payments.HandleCallback(r.Context(), cb.OrderID, status, cb.TransactionID); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ok":true}`))
}
