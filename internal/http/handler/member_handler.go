package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/minwonhaeso/esc-server/internal/http/middleware"
	"github.com/minwonhaeso/esc-server/internal/http/response"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/security"
	"github.com/minwonhaeso/esc-server/internal/service"
)

const refreshTokenHeader = "RefreshToken"

// RefreshSubjectResolver reads the member email out of a refresh token.
type RefreshSubjectResolver interface {
	RefreshSubject(refreshToken string) (string, error)
}

type MemberHandler struct {
	members        service.MemberServiceInterface
	refresh        RefreshSubjectResolver
	avatarMaxBytes int64
}

func NewMemberHandler(members service.MemberServiceInterface, refresh RefreshSubjectResolver, avatarMaxBytes int64) *MemberHandler {
	return &MemberHandler{members: members, refresh: refresh, avatarMaxBytes: avatarMaxBytes}
}

type signUpRequest struct {
	Key      string `json:"key"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	ImgURL   string `json:"imgUrl"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	PrePassword     string `json:"prePassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type patchProfileRequest struct {
	Nickname *string `json:"nickname"`
	ImgURL   *string `json:"imgUrl"`
}

func (h *MemberHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body signUpRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.members.SignUp(r.Context(), service.SignUpInput{
		Key:      body.Key,
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		Nickname: body.Nickname,
		ImgURL:   body.ImgURL,
	})
	if err != nil {
		observability.Audit(r, "member.signup.failed", "reason", err.Error())
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "member.signup.success")
	response.JSON(w, r, http.StatusCreated, res)
}

func (h *MemberHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := h.members.CheckEmailTaken(r.Context(), email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"email": email, "available": true})
}

func (h *MemberHandler) SendVerificationEmail(w http.ResponseWriter, r *http.Request) {
	var body emailRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	key, err := h.members.SendVerificationEmail(r.Context(), body.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"key": key})
}

func (h *MemberHandler) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	var body keyRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.members.ConfirmVerification(r.Context(), body.Key); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *MemberHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body loginRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.members.Login(r.Context(), service.LoginInput{Email: body.Email, Password: body.Password})
	if err != nil {
		observability.Audit(r, "member.login.failed", "reason", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "member.login.success",
		ActorEmail: res.Email,
		TargetType: "member",
		TargetID:   res.Email,
		Action:     "login",
		Outcome:    "success",
	})
	response.JSON(w, r, http.StatusOK, res)
}

func (h *MemberHandler) Logout(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.MemberEmailFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	if err := h.members.Logout(r.Context(), email, r.Header.Get("Authorization")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "member.logout",
		ActorEmail: email,
		TargetType: "member",
		TargetID:   email,
		Action:     "logout",
		Outcome:    "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Reissue reads the refresh bearer from the RefreshToken header, falling back
// to Authorization. The member is the refresh token's subject.
func (h *MemberHandler) Reissue(w http.ResponseWriter, r *http.Request) {
	bearer := r.Header.Get(refreshTokenHeader)
	if bearer == "" {
		bearer = r.Header.Get("Authorization")
	}
	raw, err := security.ResolveBearer(bearer)
	if err != nil {
		writeServiceError(w, r, service.ErrNotAuthenticated)
		return
	}
	email, err := h.refresh.RefreshSubject(raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	pair, err := h.members.Reissue(r.Context(), email, bearer)
	if err != nil {
		if errors.Is(err, service.ErrTokenMismatch) {
			observability.Audit(r, "member.reissue.mismatch", "email", email)
		}
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, pair)
}

func (h *MemberHandler) Info(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.MemberEmailFromContext(r.Context())
	info, err := h.members.Info(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, info)
}

func (h *MemberHandler) PatchInfo(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.MemberEmailFromContext(r.Context())
	var body patchProfileRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	info, err := h.members.PatchProfile(r.Context(), email, service.PatchProfileInput{Nickname: body.Nickname, ImgURL: body.ImgURL})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, info)
}

// UploadAvatar expects a multipart form with the image under "image".
func (h *MemberHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.MemberEmailFromContext(r.Context())
	if err := r.ParseMultipartForm(h.avatarMaxBytes); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing image file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	info, err := h.members.UploadAvatar(r.Context(), email, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, info)
}

func (h *MemberHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.MemberEmailFromContext(r.Context())
	if err := h.members.DeleteAccount(r.Context(), email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "member.deleted",
		ActorEmail: email,
		TargetType: "member",
		TargetID:   email,
		Action:     "delete",
		Outcome:    "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *MemberHandler) ChangePasswordMail(w http.ResponseWriter, r *http.Request) {
	var body emailRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	key, err := h.members.ChangePasswordRequest(r.Context(), body.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"key": key})
}

func (h *MemberHandler) ChangePasswordMailAuth(w http.ResponseWriter, r *http.Request) {
	var body keyRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.members.ChangePasswordConfirm(r.Context(), body.Key); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *MemberHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	email, _ := middleware.MemberEmailFromContext(r.Context())
	var body changePasswordRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	err := h.members.ChangePassword(r.Context(), service.ChangePasswordInput{
		Email:           email,
		PrePassword:     body.PrePassword,
		NewPassword:     body.NewPassword,
		ConfirmPassword: body.ConfirmPassword,
	})
	if err != nil {
		observability.Audit(r, "member.password.change.failed", "email", email, "reason", err.Error())
		writeServiceError(w, r, err)
		return
	}
	observability.Audit(r, "member.password.changed", "email", email)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "password_changed"})
}
