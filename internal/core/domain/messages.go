package domain

// User-facing texts. The chat platform and the HTTP API send them verbatim.
const (
	GreetingMessage       = "Привет! Я помогу разобраться с магистратурами ИТМО (AI и AI Product). Задай вопрос."
	HelpMessage           = "Задай вопрос по программам: учебный план, дисциплины, треки, выбор по бэкграунду."
	EmptyQuestionMessage  = "Пожалуйста, введите вопрос."
	InvalidRequestMessage = "Некорректный запрос. Проверьте параметры."
	NoResultsMessage      = "Не нашёл релевантную информацию в учебных планах."
	OffTopicMessage       = "Я отвечаю только на вопросы о магистерских программах ИТМО AI и AI Product. Попробуйте переформулировать вопрос."
	AskProgramMessage     = "Уточните, пожалуйста, программу: AI или AI Product. Тогда подберу выборные дисциплины под ваш бэкграунд."
	NoElectivesMessage    = "Не нашёл подходящих выборных дисциплин в материалах программы %s."
	ElectivesHeader       = "Рекомендации по выборным дисциплинам программы %s"
)
