package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maynagashev/roomrent/internal/api"
	"github.com/maynagashev/roomrent/internal/auth"
	"github.com/maynagashev/roomrent/internal/payment"
)

const pageFileMode = 0o600

// Поля multipart-формы верификации.
const (
	verifyFormCitizenship = "citizenship_no"
	verifyFormDocument    = "document"
)

// makeLoginCmd создает команду входа через диспетчер.
func (m *model) makeLoginCmd(username, password string) tea.Cmd {
	dispatcher := m.deps.Dispatcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loginDoneMsg{err: dispatcher.Login(ctx, username, password)}
	}
}

// makeRegisterCmd создает команду регистрации через диспетчер.
func (m *model) makeRegisterCmd(in auth.RegisterInput) tea.Cmd {
	dispatcher := m.deps.Dispatcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return registerDoneMsg{err: dispatcher.Register(ctx, in)}
	}
}

// makeVerifyCmd создает команду отправки документов на верификацию.
// Пустой docPath - форма без вложения.
func (m *model) makeVerifyCmd(citizenship, docPath string) tea.Cmd {
	dispatcher := m.deps.Dispatcher
	return func() tea.Msg {
		form := api.NewMultipartForm().Add(verifyFormCitizenship, citizenship)
		if docPath != "" {
			file, err := os.Open(docPath)
			if err != nil {
				return verifyDoneMsg{err: fmt.Errorf("ошибка открытия документа: %w", err), local: true}
			}
			defer file.Close()
			form.AddFile(verifyFormDocument, filepath.Base(docPath), file)
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return verifyDoneMsg{err: dispatcher.VerifyRegistration(ctx, form)}
	}
}

// makeLoadRoomCmd создает команду загрузки карточки комнаты.
func (m *model) makeLoadRoomCmd(id int64) tea.Cmd {
	rooms := m.deps.Rooms
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		room, err := rooms.GetRoom(ctx, id)
		return roomLoadedMsg{room: room, err: err}
	}
}

// makeSignCmd создает команду удаленной подписи текущих значений формы.
func makeSignCmd(form *payment.Form) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return signedMsg{err: form.Refresh(ctx)}
	}
}

// makeCheckoutCmd создает команду оформления оплаты. Если задан pagePath,
// туда сохраняется страница, которая сама отправит форму на шлюз.
func (m *model) makeCheckoutCmd(form *payment.Form) tea.Cmd {
	checkout := m.deps.Checkout
	pagePath := m.deps.PagePath
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := checkout.Submit(ctx, form)
		if err != nil {
			return checkoutDoneMsg{err: err}
		}
		if pagePath == "" {
			return checkoutDoneMsg{result: result}
		}
		page, err := payment.AutoSubmitHTML(checkout.GatewayURL(), result.Request)
		if err != nil {
			return checkoutDoneMsg{result: result, err: err}
		}
		if err = os.WriteFile(pagePath, page, pageFileMode); err != nil {
			slog.Error("Не удалось сохранить страницу оплаты", "path", pagePath, "error", err)
			return checkoutDoneMsg{result: result, err: fmt.Errorf("ошибка сохранения страницы оплаты: %w", err)}
		}
		slog.Info("Страница оплаты сохранена", "path", pagePath)
		return checkoutDoneMsg{result: result, pagePath: pagePath}
	}
}
