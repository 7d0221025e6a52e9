package policy

// #region customer-messages

// Customer-facing templates, in Spanish to match the customer base.
const (
	msgGreeting = "¡Hola! Soy el asistente de renovaciones de Garanti Plus. ¿En qué puedo ayudarte hoy?"

	msgAskPolicyNumber = "¡Con gusto te ayudo con la renovación! ¿Me compartes tu número de póliza, por favor?"
	msgAskVehicleInfo  = "Gracias. Ahora, ¿me puedes decir la marca, el modelo y el año de tu auto?"
	msgRequestContact  = "¡Perfecto! Para enviarte la propuesta, ¿me compartes tu correo electrónico o número de teléfono?"

	msgLeadNotified = "¡Excelente! Ya tengo todo lo que necesito. Un asesor se pondrá en contacto contigo muy pronto para finalizar tu renovación."

	msgPricingInfo       = "Tenemos planes de renovación de 12, 24, 36 y 48 meses, con cobertura en toda la república. El plan de 12 meses es el más solicitado. ¿Cuál te interesa?"
	msgPromptPlan        = "Ya te compartí nuestros planes de 12, 24, 36 y 48 meses. ¿Cuál te gustaría contratar?"
	msgPlanConfirmed     = "¡Excelente elección! Para continuar con tu plan, ¿me compartes tu correo electrónico o número de teléfono?"
	msgAskExpiryDate     = "Entiendo que tu póliza ya venció. Para ayudarte mejor, ¿me dices la fecha exacta de vencimiento o hace cuántos días venció?"
	msgAskServicesStatus = "Gracias por el dato. ¿Los servicios de mantenimiento de tu auto están al corriente?"

	msgClosing     = "¡Gracias a ti! Que tengas un excelente día."
	msgEndedAck    = "¡Hasta pronto! Aquí estaré cuando necesites renovar tu garantía."
	msgBye         = "¡Gracias por contactarnos! Que tengas un excelente día."
	msgCancelAck   = "Entiendo, he detenido el proceso de renovación. Si cambias de opinión, aquí estaré para ayudarte."
	msgDisagreeAck = "Entiendo, no hay problema. Si más adelante quieres retomar tu renovación, con gusto te ayudo."

	msgProductExplanation = "Ofrecemos la renovación de tu garantía extendida automotriz, con planes de 12 a 48 meses y cobertura en talleres de toda la república. ¿Te gustaría renovar la tuya?"
	msgClarify            = "No estoy seguro de haber entendido. ¿Quieres renovar tu garantía o tienes otra consulta?"

	msgFAQPayment = "Aceptamos pago con tarjeta de crédito, débito y transferencia bancaria, hasta en 12 mensualidades sin intereses."
	msgFAQClaims  = "Para hacer válida tu garantía, comunícate al 800 garanti (4272684) y un asesor te guiará con el proceso de reclamación."
	msgFAQSupport = "Para asistencia especializada puedes llamar al 800 garanti (4272684) o al 4432441212; con gusto te atienden."
)

// #endregion
