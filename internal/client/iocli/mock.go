package iocli

import "sync"

// IOMock реализует IO через подменяемые функции для тестов
type IOMock struct {
	PrintlnFunc      func(a ...any)
	PrintfFunc       func(format string, a ...any)
	ReadInputFunc    func(prompt string) (string, error)
	ReadPasswordFunc func(prompt string) (string, error)
	WriteFunc        func(p []byte) (n int, err error)

	PrintlnCalls      int
	PrintfCalls       int
	ReadInputCalls    int
	ReadPasswordCalls int
	WriteCalls        int

	mu sync.Mutex
}

var _ IO = (*IOMock)(nil)

func (m *IOMock) Println(a ...any) {
	m.mu.Lock()
	m.PrintlnCalls++
	m.mu.Unlock()
	if m.PrintlnFunc != nil {
		m.PrintlnFunc(a...)
	}
}

func (m *IOMock) Printf(format string, a ...any) {
	m.mu.Lock()
	m.PrintfCalls++
	m.mu.Unlock()
	if m.PrintfFunc != nil {
		m.PrintfFunc(format, a...)
	}
}

func (m *IOMock) ReadInput(prompt string) (string, error) {
	m.mu.Lock()
	m.ReadInputCalls++
	m.mu.Unlock()
	if m.ReadInputFunc != nil {
		return m.ReadInputFunc(prompt)
	}
	return "", nil
}

func (m *IOMock) ReadPassword(prompt string) (string, error) {
	m.mu.Lock()
	m.ReadPasswordCalls++
	m.mu.Unlock()
	if m.ReadPasswordFunc != nil {
		return m.ReadPasswordFunc(prompt)
	}
	return "", nil
}

func (m *IOMock) Write(p []byte) (n int, err error) {
	m.mu.Lock()
	m.WriteCalls++
	m.mu.Unlock()
	if m.WriteFunc != nil {
		return m.WriteFunc(p)
	}
	return len(p), nil
}
