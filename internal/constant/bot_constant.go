package constant

// User-facing texts
const (
	PromptEmotions = "Эмоции?"
	PromptTags     = "Теги?"

	// Folder, then file path.
	MissingEmotionsFmt = "Не нашёл эмоции для пользователя (%s). Проверь файл: %s"
	MissingTagsFmt     = "Не нашёл теги для пользователя (%s). Проверь файл: %s"

	AnswerSessionNotFound = "Сессия не найдена. Пришли текст заново."
	AnswerStepPassed      = "Этот шаг уже пройден."
	AnswerToTags          = "Ок, к тэгам."
	AnswerDone            = "Готово."
	AnswerUnknownButton   = "Не понял кнопку."

	SummaryEmotionsLabel = "Эмоции"
	SummaryTagsLabel     = "Теги"
	SummaryEmpty         = "—"
	SummaryTimeLayout    = "2006-01-02 15:04:05"

	PromptWhatToAdd     = "Что добавить?"
	PromptNewValuesFmt  = "Введите новые значения для %s через запятую:"
	ReactionAccepted    = "👌"
	ReplyAccepted       = "Принято 👌"
	ReplySaveFailedFmt  = "Не смог сохранить значения: %s"
	ReplyNoMusicLinks   = "Ссылок Яндекс.Музыки не вижу."
	ReplySheetFailedFmt = "Не смог записать в таблицу: %s"

	PlaylistMarker = "\n\nПлейлист:"
)

// Bot commands
const (
	CommandEditOptionsPrivate = "edit_constants"
	CommandEditOptionsGroup   = "constants"
	CommandEditOptionsTitle   = "Константы"
)

// Domain event types
const (
	EventNoteFinalized   = "NOTE_FINALIZED"
	EventTracksAttached  = "TRACKS_ATTACHED"
	EventOptionsAppended = "OPTIONS_APPENDED"
)

const UpdatesTopic = "telegram.updates"
