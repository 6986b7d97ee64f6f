package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/dto"
	"github.com/infoamous-source/kiosk-sub001/pkg/response"
)

// Auth business codes.
const (
	CodeInvalidCredentials    = 11001
	CodeEmailTaken            = 11002
	CodeWeakPassword          = 11003
	CodeInvalidInstructorCode = 11004
	CodeInvalidOrgCode        = 11005
	CodeRegisterFailed        = 11006
	CodeTokenInvalid          = 11007
)

type authFailure struct {
	status  int
	code    int
	message dto.AuthErrorMessage
}

func text(ko, en string) dto.LocalizedText { return dto.LocalizedText{KO: ko, EN: en} }

var authFailures = map[backend.Kind]authFailure{
	backend.KindNotConfigured: {
		status: http.StatusServiceUnavailable,
		code:   response.CodeNotConfigured,
		message: dto.AuthErrorMessage{
			Title:    text("서버 설정 오류", "Server Configuration Error"),
			Reason:   text("서버 연결이 설정되지 않았습니다", "Server connection not configured"),
			Solution: text("관리자에게 문의해주세요", "Please contact the administrator"),
		},
	},
	backend.KindInvalidInstructorCode: {
		status: http.StatusBadRequest,
		code:   CodeInvalidInstructorCode,
		message: dto.AuthErrorMessage{
			Title:    text("선생님코드 오류", "Teacher Code Error"),
			Reason:   text("유효하지 않은 선생님코드입니다", "Invalid teacher code"),
			Solution: text("선생님에게 올바른 코드를 확인해주세요", "Please check the correct code with your teacher"),
		},
	},
	backend.KindInvalidOrgCode: {
		status: http.StatusBadRequest,
		code:   CodeInvalidOrgCode,
		message: dto.AuthErrorMessage{
			Title:    text("기관코드 오류", "Organization Code Error"),
			Reason:   text("유효하지 않은 기관코드입니다", "Invalid organization code"),
			Solution: text("기관 담당자에게 올바른 코드를 확인해주세요", "Please check the correct code with your organization"),
		},
	},
	backend.KindEmailTaken: {
		status: http.StatusConflict,
		code:   CodeEmailTaken,
		message: dto.AuthErrorMessage{
			Title:    text("회원가입 실패", "Registration Failed"),
			Reason:   text("이미 사용 중인 이메일입니다", "This email is already registered"),
			Solution: text("다른 이메일을 사용하거나 로그인해주세요", "Use a different email or log in"),
		},
	},
	backend.KindWeakPassword: {
		status: http.StatusBadRequest,
		code:   CodeWeakPassword,
		message: dto.AuthErrorMessage{
			Title:    text("비밀번호 오류", "Password Error"),
			Reason:   text("비밀번호가 너무 약합니다", "Password is too weak"),
			Solution: text("영문, 숫자, 특수문자를 포함하여 8자 이상 입력하세요", "Use 8+ chars with letters, numbers, special chars"),
		},
	},
	backend.KindInvalidCredentials: {
		status: http.StatusUnauthorized,
		code:   CodeInvalidCredentials,
		message: dto.AuthErrorMessage{
			Title:    text("로그인 실패", "Login Failed"),
			Reason:   text("이메일 또는 비밀번호가 올바르지 않습니다", "Invalid email or password"),
			Solution: text("입력한 정보를 다시 확인하세요", "Please check your credentials"),
		},
	},
	backend.KindUnauthorized: {
		status: http.StatusUnauthorized,
		code:   CodeTokenInvalid,
		message: dto.AuthErrorMessage{
			Title:    text("세션 만료", "Session Expired"),
			Reason:   text("로그인 정보가 만료되었습니다", "Your session has expired"),
			Solution: text("다시 로그인해주세요", "Please log in again"),
		},
	},
	backend.KindDatabase: {
		status: http.StatusInternalServerError,
		code:   CodeRegisterFailed,
		message: dto.AuthErrorMessage{
			Title:    text("등록 실패", "Registration Failed"),
			Reason:   text("서버에서 사용자 정보를 처리하지 못했습니다", "Could not process user data on server"),
			Solution: text("잠시 후 다시 시도해주세요", "Please try again later"),
		},
	},
}

var unknownAuthFailure = authFailure{
	status: http.StatusInternalServerError,
	code:   response.CodeInternalError,
	message: dto.AuthErrorMessage{
		Title:    text("오류 발생", "Error"),
		Reason:   text("알 수 없는 오류가 발생했습니다", "An unknown error occurred"),
		Solution: text("네트워크 연결을 확인하고 다시 시도하세요", "Check your network connection and try again"),
	},
}

// AuthFailureFor maps an auth-flow error to its user-facing message.
func AuthFailureFor(err error) (int, int, dto.AuthErrorMessage) {
	f, ok := authFailures[backend.KindOf(err)]
	if !ok {
		f = unknownAuthFailure
	}
	return f.status, f.code, f.message
}

func writeAuthError(c *gin.Context, err error) {
	status, code, msg := AuthFailureFor(err)
	response.ErrorWithDetails(c, status, code, msg.Reason.EN, msg)
}
