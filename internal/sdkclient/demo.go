package sdkclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"ragflowctl/internal/ragflow"
)

// DemoOptions — имена и вопросы для прогона RunDemo; пустые поля заполняются.
type DemoOptions struct {
	DatasetName    string
	ChatName       string
	SessionName    string
	UploadFile     string // загружается, только если файл существует
	UploadName     string
	Question       string
	StreamQuestion string
}

func (o *DemoOptions) defaults() {
	if o.DatasetName == "" {
		o.DatasetName = "demo dataset"
	}
	if o.ChatName == "" {
		o.ChatName = "demo assistant"
	}
	if o.SessionName == "" {
		o.SessionName = "demo session"
	}
	if o.UploadFile == "" {
		o.UploadFile = "/tmp/test.txt"
	}
	if o.UploadName == "" {
		o.UploadName = "demo document.txt"
	}
	if o.Question == "" {
		o.Question = "Hello, please introduce yourself"
	}
	if o.StreamQuestion == "" {
		o.StreamQuestion = "Briefly describe RAGFlow"
	}
}

// RunDemo проходит основные операции по порядку и печатает результат каждого
// шага в w. Первая ошибка прерывает прогон.
func RunDemo(ctx context.Context, c *Client, w io.Writer, opts DemoOptions) error {
	opts.defaults()
	fmt.Fprintln(w, "=== RAGFlow client walkthrough ===")

	fmt.Fprintln(w, "\n1. Create dataset")
	ds, err := c.CreateDataset(ctx, ragflow.CreateDatasetParams{
		Name:        opts.DatasetName,
		Description: "walkthrough dataset",
		ChunkMethod: DefaultChunkMethod,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "dataset id: %s\n", ds.ID)

	fmt.Fprintln(w, "\n2. List datasets")
	datasets, err := c.ListDatasets(ctx, ragflow.ListDatasetsParams{})
	if err != nil {
		return err
	}
	for _, d := range datasets {
		fmt.Fprintf(w, "- %s (%s)\n", d.Name, d.ID)
	}

	if _, statErr := os.Stat(opts.UploadFile); statErr == nil {
		fmt.Fprintln(w, "\n3. Upload document")
		if _, err := c.UploadDocumentFromFile(ctx, ds.ID, opts.UploadFile, opts.UploadName); err != nil {
			return err
		}
	} else if errors.Is(statErr, os.ErrNotExist) {
		fmt.Fprintf(w, "\n3. Skip upload (%s not found)\n", opts.UploadFile)
	} else {
		return statErr
	}

	fmt.Fprintln(w, "\n4. List documents")
	docs, err := c.ListDocuments(ctx, ds.ID, ragflow.ListDocumentsParams{})
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Fprintf(w, "- %s (%s)\n", d.Name, d.ID)
	}

	fmt.Fprintln(w, "\n5. Create chat assistant")
	chat, err := c.CreateChatAssistant(ctx, ragflow.CreateChatParams{Name: opts.ChatName, DatasetIDs: []string{ds.ID}})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "chat id: %s\n", chat.ID)

	fmt.Fprintln(w, "\n6. List chat assistants")
	chats, err := c.ListChatAssistants(ctx, ragflow.ListChatsParams{})
	if err != nil {
		return err
	}
	for _, ch := range chats {
		fmt.Fprintf(w, "- %s (%s)\n", ch.Name, ch.ID)
	}

	fmt.Fprintln(w, "\n7. Create session")
	sess, err := c.CreateSession(ctx, chat.ID, opts.SessionName)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "session id: %s\n", sess.ID)

	fmt.Fprintln(w, "\n8. Ask")
	answer, err := c.AskAssistant(ctx, chat.ID, sess.ID, opts.Question)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "assistant: %s\n", answer.Content)

	fmt.Fprintln(w, "\n9. Ask (stream)")
	fmt.Fprint(w, "assistant: ")
	if err := printStream(ctx, c, w, chat.ID, sess.ID, opts.StreamQuestion); err != nil {
		return err
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "\n10. List agents")
	agents, err := c.ListAgents(ctx, ragflow.ListAgentsParams{})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "found %d agent(s)\n", len(agents))
	for _, a := range agents {
		fmt.Fprintf(w, "- %s\n", a.Title)
	}

	fmt.Fprintln(w, "\n=== done ===")
	return nil
}

// printStream печатает только приращения накопительного ответа.
func printStream(ctx context.Context, c *Client, w io.Writer, chatID, sessionID, question string) error {
	stream, err := c.StreamAssistant(ctx, chatID, sessionID, question)
	if err != nil {
		return err
	}
	defer stream.Close()

	prev := ""
	for stream.Next() {
		cur := stream.Message().Content
		fmt.Fprint(w, ragflow.Delta(prev, cur))
		prev = cur
	}
	return stream.Err()
}
