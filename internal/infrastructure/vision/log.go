package vision

import "log"

// Logf журнал пайплайна; по умолчанию log.Printf. Тесты могут заглушить его через SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger заменяет журнал пакета; nil отключает вывод
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
