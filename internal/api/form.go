package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// MultipartForm - поля и файлы для multipart/form-data запроса.
// Порядок полей сохраняется.
type MultipartForm struct {
	fields []formField
	files  []FormFile
}

type formField struct {
	name  string
	value string
}

// FormFile - файл-вложение формы.
type FormFile struct {
	Field    string    // Имя поля формы
	FileName string    // Имя файла
	Content  io.Reader // Содержимое
}

// NewMultipartForm создает пустую форму.
func NewMultipartForm() *MultipartForm {
	return &MultipartForm{}
}

// Add добавляет текстовое поле.
func (f *MultipartForm) Add(name, value string) *MultipartForm {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile добавляет файл.
func (f *MultipartForm) AddFile(field, fileName string, content io.Reader) *MultipartForm {
	f.files = append(f.files, FormFile{Field: field, FileName: fileName, Content: content})
	return f
}

// Value возвращает первое значение текстового поля или пустую строку.
func (f *MultipartForm) Value(name string) string {
	if f == nil {
		return ""
	}
	for _, field := range f.fields {
		if field.name == name {
			return field.value
		}
	}
	return ""
}

// Files возвращает вложения формы.
func (f *MultipartForm) Files() []FormFile {
	if f == nil {
		return nil
	}
	return f.files
}

// encode сериализует форму и возвращает тело и значение Content-Type.
// nil форма кодируется как пустая.
func (f *MultipartForm) encode() (*bytes.Buffer, string, error) {
	if f == nil {
		f = NewMultipartForm()
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range f.fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("ошибка записи поля '%s': %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := writer.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("ошибка создания части для файла '%s': %w", file.FileName, err)
		}
		if _, err = io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("ошибка записи файла '%s': %w", file.FileName, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("ошибка завершения multipart формы: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
