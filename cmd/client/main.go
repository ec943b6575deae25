package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yourorg/identgate/internal/client/api"
	"github.com/yourorg/identgate/internal/client/config"
	"github.com/yourorg/identgate/internal/client/device"
	"github.com/yourorg/identgate/internal/client/facematch"
	"github.com/yourorg/identgate/internal/client/resolver"
	"github.com/yourorg/identgate/internal/client/session"
)

// terminalSensor simula el sensor biométrico con un prompt s/n.
type terminalSensor struct {
	reader *bufio.Reader
}

func (t *terminalSensor) Available(ctx context.Context) (bool, string, error) {
	return true, device.SensorFingerprint, nil
}

func (t *terminalSensor) Prompt(ctx context.Context, message string) (bool, error) {
	fmt.Printf("🔐 %s [s/n]: ", message)
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "s" || answer == "si" || answer == "y", nil
}

// terminalCamera pide una ruta de archivo y lo entrega como base64.
type terminalCamera struct {
	reader *bufio.Reader
}

func (t *terminalCamera) CapturePhoto(ctx context.Context) (*device.Photo, error) {
	fmt.Print("📷 Ruta de la imagen (vacío para cancelar): ")
	line, err := t.reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return nil, device.ErrCaptureCancelled
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &device.Photo{Base64: base64.StdEncoding.EncodeToString(raw)}, nil
}

func main() {
	cfg := config.LoadConfig()
	reader := bufio.NewReader(os.Stdin)

	store := session.NewFileStore(cfg.SessionFile)

	client := api.NewClientWithBase(cfg.ServerBaseURL)
	r := resolver.New(resolver.Options{
		Store:          store,
		API:            client,
		Sensor:         &terminalSensor{reader: reader},
		Camera:         &terminalCamera{reader: reader},
		Matcher:        facematch.New(),
		Scheme:         cfg.DeepLinkScheme,
		Host:           cfg.DeepLinkHost,
		ResendCooldown: cfg.ResendCooldown,
		Notify:         func(msg string) { fmt.Println("🔔", msg) },
	})

	ctx := context.Background()

	// Arranque en frío: la vía biométrica corre primero
	d := r.Resolve(ctx)
	printDecision(d)

	for {
		fmt.Println("==== identgate CLI ====")
		fmt.Println("1) Estado de sesión")
		fmt.Println("2) Login con credenciales")
		fmt.Println("3) Enviar magic link")
		fmt.Println("4) Abrir deep link")
		fmt.Println("5) Validar rostro")
		fmt.Println("6) Cerrar sesión")
		fmt.Println("7) Salir")
		fmt.Print("Selecciona una opción: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			printDecision(r.Decision())
		case "2":
			doLogin(ctx, reader, client, store, r)
		case "3":
			doSendMagicLink(ctx, reader, r)
		case "4":
			fmt.Print("URL del deep link: ")
			raw, _ := reader.ReadString('\n')
			r.OnDeepLink(ctx, strings.TrimSpace(raw))
			printDecision(r.Decision())
		case "5":
			if err := r.ValidateFace(ctx); err != nil {
				fmt.Println("❌", resolver.UserMessage(err))
			} else {
				fmt.Println("✅ Rostro validado")
				printDecision(r.Decision())
			}
		case "6":
			if err := r.Logout(ctx); err != nil {
				fmt.Println("❌ No se pudo cerrar sesión:", err)
			} else {
				fmt.Println("✅ Sesión cerrada")
			}
		case "7":
			fmt.Println("Adiós")
			return
		default:
			fmt.Println("Opción inválida")
		}
		fmt.Println()
	}
}

func doLogin(ctx context.Context, reader *bufio.Reader, client *api.Client, store session.Store, r *resolver.Resolver) {
	fmt.Print("Correo: ")
	email, _ := reader.ReadString('\n')
	fmt.Print("Contraseña: ")
	password, _ := reader.ReadString('\n')

	res := client.Login(ctx, strings.TrimSpace(email), strings.TrimSpace(password))
	if res.Status != api.StatusOK {
		msg := res.Message
		if msg == "" {
			msg = "No se pudo conectar con el servidor."
		}
		fmt.Println("❌", msg)
		return
	}

	rec := session.Record{Name: res.Identity.Name, Email: res.Identity.Email}
	if err := session.SaveRecord(ctx, store, rec); err != nil {
		fmt.Println("⚠️ No se pudo persistir la sesión:", err)
	}
	fmt.Printf("✅ Bienvenido, %s\n", res.Identity.Name)
}

func doSendMagicLink(ctx context.Context, reader *bufio.Reader, r *resolver.Resolver) {
	email := r.PendingEmail(ctx)
	prompt := "Correo: "
	if email != "" {
		prompt = fmt.Sprintf("Correo [%s]: ", email)
	}
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	if typed := strings.TrimSpace(line); typed != "" {
		email = typed
	}

	if err := r.SendMagicLink(ctx, email); err != nil {
		fmt.Println("❌", resolver.UserMessage(err))
		if remaining := r.CooldownRemaining(); remaining > 0 {
			fmt.Printf("⏳ Reintenta en %s\n", remaining.Round(time.Second))
		}
		return
	}
	fmt.Println("📨 Enlace enviado, revisa tu correo")
}

func printDecision(d resolver.Decision) {
	switch d.State {
	case resolver.StateAuthenticated:
		fmt.Printf("✅ Autenticado como %s <%s>\n", d.Identity.Name, d.Identity.Email)
	case resolver.StateUnauthenticated:
		fmt.Println("🔓 Sin autenticar:", resolver.UserMessage(d.Reason))
	default:
		fmt.Println("⏳ Sin decisión todavía")
	}
}
