package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/siherrmann/nutricoach/client"
	"github.com/siherrmann/nutricoach/label"
	"github.com/siherrmann/nutricoach/tui"
)

func main() {
	url := flag.String("url", "http://127.0.0.1:8000", "nutricoach server address")
	labelPath := flag.String("label", "", "ingredient label to attach (.pdf or .txt)")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "request timeout")
	flag.Parse()

	var labelText string
	if *labelPath != "" {
		text, err := label.ExtractText(*labelPath)
		if err != nil {
			log.Fatalf("Failed to read label: %v", err)
		}
		labelText = text
	}

	c := client.New(*url, *timeout)
	p := tea.NewProgram(tui.New(c, labelText), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running chat: %v", err)
	}
}
