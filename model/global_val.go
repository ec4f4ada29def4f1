package model

// 消息类型
const (
	// 请求
	TypeEnv   = "env"
	TypeStart = "start"
	TypeStop  = "stop"

	// 响应
	TypeEnvSet   = "envSet"
	TypeStarted  = "started"
	TypeProgress = "progress"
	TypeResult   = "result"
	TypeStopped  = "stopped"
	TypeBusy     = "busy"
	TypeError    = "error"
)
