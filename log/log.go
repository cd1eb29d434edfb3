package log

var defaultLogger Logger

func init() {
	// 创建默认的SLog实例，向终端输出text格式日志
	slog, err := NewSLogWithOptions(&SLogOptions{
		Level:  "info",
		Format: "text",
	})
	if err != nil {
		panic("failed to initialize default logger: " + err.Error())
	}
	defaultLogger = slog
}

func Default() Logger {
	return defaultLogger
}

// SetDefault 替换默认日志器，进程启动时调用一次
func SetDefault(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// NewLoggerWithOptions 创建日志器，options 为 nil 时返回默认日志器
func NewLoggerWithOptions(options *SLogOptions) (Logger, error) {
	if options == nil {
		return defaultLogger, nil
	}
	return NewSLogWithOptions(options)
}
