package listeners

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"felix-hub/internal/entities"
	"felix-hub/internal/events"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/config"
	"felix-hub/pkg/constants"
	"felix-hub/pkg/eventbus"
	"felix-hub/pkg/metrics"
	"felix-hub/pkg/telegram"
	"felix-hub/pkg/utils"
)

const orderDateLayout = "02.01.2006 15:04"

var statusEmoji = map[string]string{
	constants.StatusNew:        "🆕",
	constants.StatusInProgress: "⏳",
	constants.StatusReady:      "✅",
	constants.StatusIssued:     "📦",
}

// Шаблоны «заказ готов» на языке создателя заказа.
var orderReadyTemplates = map[string]string{
	constants.LangRU: "✅ <b>Заказ №%d готов!</b>\n\n📦 <b>Детали:</b>\n%s\n\n🚗 <b>VIN:</b> %s\n📅 <b>Дата заказа:</b> %s\n\nЗабери запчасти у кладовщика! 🔧",
	constants.LangHE: "✅ <b>הזמנה מס' %d מוכנה!</b>\n\n📦 <b>חלקים:</b>\n%s\n\n🚗 <b>VIN:</b> %s\n📅 <b>תאריך הזמנה:</b> %s\n\nקח את החלפים מהמחסנאי! 🔧",
	constants.LangEN: "✅ <b>Order #%d is ready!</b>\n\n📦 <b>Parts:</b>\n%s\n\n🚗 <b>VIN:</b> %s\n📅 <b>Order date:</b> %s\n\nPick up parts from warehouse! 🔧",
}

// NotificationListener шлёт уведомления в Telegram по событиям заказов
// и пишет результат каждой отправки в notification_logs.
type NotificationListener struct {
	telegram            telegram.ServiceInterface
	notificationLogRepo repositories.NotificationLogRepositoryInterface
	telegramCfg         config.TelegramConfig
	features            config.Features
	logger              *zap.Logger
}

func NewNotificationListener(
	tg telegram.ServiceInterface,
	notificationLogRepo repositories.NotificationLogRepositoryInterface,
	telegramCfg config.TelegramConfig,
	features config.Features,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		telegram:            tg,
		notificationLogRepo: notificationLogRepo,
		telegramCfg:         telegramCfg,
		features:            features,
		logger:              logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderCreated, l.handleOrderCreated)
	bus.Subscribe(events.OrderStatusChanged, l.handleStatusChanged)
	bus.Subscribe(events.OrderAssigned, l.handleOrderAssigned)
	l.logger.Info("NotificationListener подписан на события заказов",
		zap.Bool("admin", l.features.EnableTgAdminNotifs),
		zap.Bool("mechanic", l.features.EnableTgMechNotifs),
	)
}

func (l *NotificationListener) handleOrderCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderCreatedEvent)
	if !ok || !l.features.EnableTgAdminNotifs {
		return nil
	}
	if len(l.telegramCfg.AdminChatIDs) == 0 {
		l.logger.Warn("ADMIN_CHAT_IDS не заданы, уведомление о новом заказе не отправлено", zap.Uint64("order_id", e.Order.ID))
		return nil
	}

	message := l.formatNewOrder(e.Order)
	delivered := 0
	for _, chatID := range l.telegramCfg.AdminChatIDs {
		if l.deliver(ctx, &e.Order.ID, constants.NotificationNewOrder, chatID, message) {
			delivered++
		}
	}
	l.logger.Info("Админы уведомлены о новом заказе",
		zap.Uint64("order_id", e.Order.ID),
		zap.Int("delivered", delivered),
		zap.Int("total", len(l.telegramCfg.AdminChatIDs)),
	)
	return nil
}

func (l *NotificationListener) handleStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderStatusChangedEvent)
	if !ok || !l.features.EnableTgMechNotifs || !constants.IsNotifiableStatus(e.NewStatus) {
		return nil
	}
	chatID, ok := parseChatID(e.Order.TelegramID)
	if !ok {
		l.logger.Debug("У создателя заказа нет Telegram-чата", zap.Uint64("order_id", e.Order.ID), zap.String("telegram_id", e.Order.TelegramID))
		return nil
	}

	if e.NewStatus == constants.StatusReady {
		l.deliver(ctx, &e.Order.ID, constants.NotificationOrderReady, chatID, formatOrderReady(e.Order))
		return nil
	}
	l.deliver(ctx, &e.Order.ID, constants.NotificationStatusChanged, chatID, formatStatusChanged(e.Order, e.OldStatus, e.NewStatus))
	return nil
}

func (l *NotificationListener) handleOrderAssigned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderAssignedEvent)
	if !ok || !l.features.EnableTgMechNotifs {
		return nil
	}
	chatID, ok := parseChatID(utils.SafeDeref(e.Mechanic.TelegramID))
	if !ok {
		return nil
	}
	l.deliver(ctx, &e.Order.ID, constants.NotificationAssigned, chatID, formatAssigned(e.Order))
	return nil
}

// deliver отправляет сообщение и журналирует результат. Ошибки наружу не уходят.
func (l *NotificationListener) deliver(ctx context.Context, orderID *uint64, kind string, chatID int64, message string) bool {
	err := l.telegram.SendMessage(ctx, chatID, message)

	result := "success"
	logEntry := entities.NotificationLog{
		OrderID:   orderID,
		Type:      kind,
		Recipient: strconv.FormatInt(chatID, 10),
		Success:   err == nil,
	}
	if err != nil {
		result = "failed"
		errText := err.Error()
		logEntry.ErrorMessage = &errText
		l.logger.Error("Не удалось отправить уведомление",
			zap.String("type", kind),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
	metrics.NotificationsSent.WithLabelValues(kind, result).Inc()

	if logErr := l.notificationLogRepo.Create(ctx, logEntry); logErr != nil {
		l.logger.Warn("Не удалось записать журнал уведомлений", zap.Error(logErr))
	}
	return err == nil
}

func parseChatID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func partsList(order entities.Order) string {
	names := order.PartNames()
	if len(names) == 0 {
		return "  • —"
	}
	lines := make([]string, 0, len(names))
	for _, n := range names {
		lines = append(lines, "  • "+telegram.Escape(n))
	}
	return strings.Join(lines, "\n")
}

func carIdentifier(order entities.Order) string {
	if order.CarNumber != nil && *order.CarNumber != "" {
		return *order.CarNumber
	}
	return order.VIN
}

func (l *NotificationListener) adminLink(orderID uint64) string {
	base := strings.TrimRight(l.telegramCfg.FrontendURL, "/")
	return fmt.Sprintf("%s/#/admin/orders/%d", base, orderID)
}

func (l *NotificationListener) formatNewOrder(order entities.Order) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🆕 <b>Новый заказ #%d</b>\n\n", order.ID)
	fmt.Fprintf(&sb, "🚗 <b>Номер авто:</b> %s\n", telegram.Escape(carIdentifier(order)))
	fmt.Fprintf(&sb, "👤 <b>Механик:</b> %s\n", telegram.Escape(order.MechanicName))
	fmt.Fprintf(&sb, "📂 <b>Категория:</b> %s\n\n", telegram.Escape(order.Category))
	fmt.Fprintf(&sb, "<b>Запчасти:</b>\n%s", partsList(order))
	if l.telegramCfg.FrontendURL != "" {
		fmt.Fprintf(&sb, "\n\n🔗 <a href='%s'>Открыть в админ-панели</a>", l.adminLink(order.ID))
	}
	return sb.String()
}

func formatOrderReady(order entities.Order) string {
	tmpl, ok := orderReadyTemplates[order.Language]
	if !ok {
		tmpl = orderReadyTemplates[constants.LangRU]
	}
	return fmt.Sprintf(tmpl, order.ID, partsList(order), telegram.Escape(carIdentifier(order)), order.CreatedAt.Format(orderDateLayout))
}

func formatStatusChanged(order entities.Order, oldStatus, newStatus string) string {
	emoji, ok := statusEmoji[newStatus]
	if !ok {
		emoji = "❓"
	}
	return fmt.Sprintf("%s <b>Статус заказа №%d изменён</b>\n\nБыло: <i>%s</i>\nСтало: <b>%s</b>\n\n🚗 VIN: %s",
		emoji, order.ID, oldStatus, newStatus, telegram.Escape(carIdentifier(order)))
}

func formatAssigned(order entities.Order) string {
	return fmt.Sprintf("🔧 <b>Вам назначен заказ №%d</b>\n\n🚗 %s\n📂 %s\n\n%s",
		order.ID, telegram.Escape(carIdentifier(order)), telegram.Escape(order.Category), partsList(order))
}
