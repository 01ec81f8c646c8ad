package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	MyInfoCtx      ContextKey = "myInfo"
	MyProviderCtx  ContextKey = "myProvider"
	ProviderCtx    ContextKey = "provider"
	AppointmentCtx ContextKey = "appointment"
)
